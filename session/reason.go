package session

// Reason 会话结束原因码，随导航一并交给 UI 边界
type Reason string

const (
	ReasonSessionExpired     Reason = "session_expired"
	ReasonInactivityTimeout  Reason = "inactivity_timeout"
	ReasonTokenInvalid       Reason = "token_invalid"
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonLoggedOut          Reason = "logged_out"
)

func (r Reason) String() string {
	return string(r)
}

// Navigator UI 边界，会话结束时跳转到登录页
type Navigator interface {
	Navigate(reason Reason)
}

// NavigatorFunc 函数适配 Navigator
type NavigatorFunc func(reason Reason)

func (f NavigatorFunc) Navigate(reason Reason) {
	f(reason)
}

type nopNavigator struct{}

func (nopNavigator) Navigate(Reason) {}
