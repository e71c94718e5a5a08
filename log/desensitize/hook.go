package desensitize

import "sync"

// Hook 按添加顺序执行的一组脱敏规则
type Hook struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewHook 创建脱敏钩子
func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	for _, r := range rules {
		h.AddRule(r)
	}
	return h
}

// NewBuiltinHook 加载全部内置规则
func NewBuiltinHook() *Hook {
	return NewHook(BuiltinRules()...)
}

// AddRule 添加规则，同名规则原位替换
func (h *Hook) AddRule(rule Rule) {
	if rule == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, r := range h.rules {
		if r.Name() == rule.Name() {
			h.rules[i] = rule
			return
		}
	}
	h.rules = append(h.rules, rule)
}

// AddContentRule 添加内容规则
func (h *Hook) AddContentRule(name, pattern, replacement string) error {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		return err
	}
	h.AddRule(rule)
	return nil
}

// RemoveRule 移除规则
func (h *Hook) RemoveRule(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, r := range h.rules {
		if r.Name() == name {
			h.rules = append(h.rules[:i], h.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules 规则名称列表
func (h *Hook) Rules() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.rules))
	for _, r := range h.rules {
		names = append(names, r.Name())
	}
	return names
}

// RuleCount 规则数量
func (h *Hook) RuleCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

// Desensitize 依次应用所有规则
func (h *Hook) Desensitize(s string) string {
	if s == "" {
		return s
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.rules {
		s = r.Process(s)
	}
	return s
}
