package services

import "strings"

// ProtectionRule shields a set of identifiers of one resource kind.
// Only actions explicitly mapped to false are denied.
type ProtectionRule struct {
	Identifiers []string
	Actions     map[string]bool
	Message     string
}

// RuleError reports a denied action on a protected identifier. Handlers
// map it to a 400 response with the rule's message.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

type compiledRule struct {
	identifiers map[string]struct{}
	actions     map[string]bool
	message     string
}

// ProtectionPolicy is a static allow/deny table consulted by mutation
// paths before altering protected rows, independent of RBAC outcome.
type ProtectionPolicy struct {
	rules map[string]compiledRule
}

func NewProtectionPolicy(rules map[string]ProtectionRule) *ProtectionPolicy {
	compiled := make(map[string]compiledRule, len(rules))
	for resource, rule := range rules {
		identifiers := make(map[string]struct{}, len(rule.Identifiers))
		for _, id := range rule.Identifiers {
			identifiers[strings.ToLower(id)] = struct{}{}
		}
		message := rule.Message
		if message == "" {
			message = "operation not allowed on a protected " + resource
		}
		compiled[resource] = compiledRule{
			identifiers: identifiers,
			actions:     rule.Actions,
			message:     message,
		}
	}
	return &ProtectionPolicy{rules: compiled}
}

// Can reports whether the action may proceed. Identifiers outside the
// protected set are always allowed; protected identifiers are allowed
// unless the action is explicitly mapped to false.
func (p *ProtectionPolicy) Can(resource, action, identifier string) bool {
	rule, ok := p.rules[resource]
	if !ok {
		return true
	}
	if _, protected := rule.identifiers[strings.ToLower(identifier)]; !protected {
		return true
	}
	allowed, ok := rule.actions[action]
	if !ok {
		return true
	}
	return allowed
}

// Validate returns a RuleError with the rule's configured message when the
// action is denied.
func (p *ProtectionPolicy) Validate(resource, action, identifier string) error {
	if p.Can(resource, action, identifier) {
		return nil
	}
	return &RuleError{Message: p.rules[resource].message}
}
