// Package audience builds composable audience selector expressions for push
// targeting. Selectors are immutable values: combinators capture the
// serialized form of their children at construction, so a selector cannot
// change after it is embedded in another.
package audience

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/nimbuscloud/nimbus-go/pkg/nimbus"
)

// Kind enumerates the single-condition selector types the wire schema
// accepts. The set is closed; the API rejects anything else.
type Kind string

const (
	KindChannel        Kind = "channel"
	KindIOSChannel     Kind = "ios_channel"
	KindAndroidChannel Kind = "android_channel"
	KindAmazonChannel  Kind = "amazon_channel"
	KindOpenChannel    Kind = "open_channel"
	KindDeviceToken    Kind = "device_token"
	KindNamedUser      Kind = "named_user"
	KindTag            Kind = "tag"
	KindAlias          Kind = "alias"
	KindSegment        Kind = "segment"
)

var deviceTokenPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Selector is an immutable audience expression: a single condition, a
// combinator over other selectors, or the universal "all" sentinel.
// Construction is pure; invalid values surface from Value or MarshalJSON.
type Selector struct {
	value any
	err   error
}

// Value returns the wire form of the selector: a nested map for conditions
// and combinators, or the string "all" for the universal sentinel.
func (s *Selector) Value() (any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.value, nil
}

// MarshalJSON implements json.Marshaler.
func (s *Selector) MarshalJSON() ([]byte, error) {
	v, err := s.Value()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// All selects every device known to the application.
func All() *Selector {
	return &Selector{value: "all"}
}

func leaf(kind Kind, value string) *Selector {
	return &Selector{value: map[string]any{string(kind): value}}
}

func channelLeaf(kind Kind, id string) *Selector {
	if _, err := uuid.Parse(id); err != nil {
		return &Selector{err: &nimbus.ValidationError{
			Field:   string(kind),
			Message: fmt.Sprintf("%q is not a valid channel identifier", id),
		}}
	}
	return leaf(kind, id)
}

// Channel selects a single channel by its identifier.
func Channel(id string) *Selector { return channelLeaf(KindChannel, id) }

// IOSChannel selects a single iOS channel.
func IOSChannel(id string) *Selector { return channelLeaf(KindIOSChannel, id) }

// AndroidChannel selects a single Android channel.
func AndroidChannel(id string) *Selector { return channelLeaf(KindAndroidChannel, id) }

// AmazonChannel selects a single Amazon channel.
func AmazonChannel(id string) *Selector { return channelLeaf(KindAmazonChannel, id) }

// OpenChannel selects a single open platform channel.
func OpenChannel(id string) *Selector { return channelLeaf(KindOpenChannel, id) }

// DeviceToken selects a device by its 64-digit hex push token.
func DeviceToken(token string) *Selector {
	if !deviceTokenPattern.MatchString(token) {
		return &Selector{err: &nimbus.ValidationError{
			Field:   string(KindDeviceToken),
			Message: fmt.Sprintf("%q is not a valid device token", token),
		}}
	}
	return leaf(KindDeviceToken, token)
}

// NamedUser selects every channel associated with a named user.
func NamedUser(id string) *Selector { return leaf(KindNamedUser, id) }

// Alias selects devices registered under an alias.
func Alias(name string) *Selector { return leaf(KindAlias, name) }

// Segment selects the members of a saved segment.
func Segment(id string) *Selector { return leaf(KindSegment, id) }

// Tag selects devices carrying a tag in the default tag group.
func Tag(name string) *Selector { return leaf(KindTag, name) }

// TagInGroup selects devices carrying a tag in a specific tag group.
func TagInGroup(name, group string) *Selector {
	return &Selector{value: map[string]any{string(KindTag): name, "group": group}}
}

func combine(op string, children []*Selector) *Selector {
	if len(children) == 0 {
		return &Selector{err: &nimbus.ValidationError{
			Field:   op,
			Message: "requires at least one child selector",
		}}
	}
	values := make([]any, 0, len(children))
	for _, child := range children {
		v, err := child.Value()
		if err != nil {
			return &Selector{err: err}
		}
		values = append(values, v)
	}
	return &Selector{value: map[string]any{op: values}}
}

// And selects devices matching every child selector.
func And(children ...*Selector) *Selector { return combine("and", children) }

// Or selects devices matching any child selector.
func Or(children ...*Selector) *Selector { return combine("or", children) }

// Not selects devices not matching the child selector.
func Not(child *Selector) *Selector {
	v, err := child.Value()
	if err != nil {
		return &Selector{err: err}
	}
	return &Selector{value: map[string]any{"not": v}}
}
