package html

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

// DescriptionPolicy is the default policy applied to rich text descriptions:
// user generated content markup without scripts, styles or event handlers.
// Templates apply it with the sanitize filter.
func DescriptionPolicy() *bluemonday.Policy {
	descriptionPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").OnElements("p", "span", "div", "ul", "ol", "li")
		descriptionPolicy = policy
	})
	return descriptionPolicy
}
