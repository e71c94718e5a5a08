package http

const ContentTypeJSON = "application/json"
