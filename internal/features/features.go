package features

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Size is the number of features produced for every token.
const Size = 2 + 2*len(alphabet)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Feature names that are not letter-indexed.
const (
	NameFirstLetter = "firstLetter"
	NameLastLetter  = "lastLetter"
)

// Kind tags the dynamic type held by a Value.
type Kind uint8

const (
	KindLetter Kind = iota + 1
	KindFlag
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindLetter:
		return "letter"
	case KindFlag:
		return "flag"
	case KindCount:
		return "count"
	default:
		return "unknown"
	}
}

// Value is a comparable tagged union of the three feature value types.
// Values of different kinds never compare equal.
type Value struct {
	kind   Kind
	letter string
	flag   bool
	count  int
}

// Letter returns a character value. The empty string is the sentinel for
// "no character" (first/last letter of an empty token).
func Letter(s string) Value { return Value{kind: KindLetter, letter: s} }

// Flag returns a boolean value.
func Flag(b bool) Value { return Value{kind: KindFlag, flag: b} }

// Count returns an integer value.
func Count(n int) Value { return Value{kind: KindCount, count: n} }

func (v Value) Kind() Kind { return v.kind }

// AsLetter returns the character held by v and whether v is a letter value.
func (v Value) AsLetter() (string, bool) { return v.letter, v.kind == KindLetter }

// AsFlag returns the boolean held by v and whether v is a flag value.
func (v Value) AsFlag() (bool, bool) { return v.flag, v.kind == KindFlag }

// AsCount returns the integer held by v and whether v is a count value.
func (v Value) AsCount() (int, bool) { return v.count, v.kind == KindCount }

func (v Value) String() string {
	switch v.kind {
	case KindLetter:
		return strconv.Quote(v.letter)
	case KindFlag:
		return strconv.FormatBool(v.flag)
	case KindCount:
		return strconv.Itoa(v.count)
	default:
		return "<nil>"
	}
}

// Feature is a named signal derived from a token. Two features are the same
// feature only when both name and value match exactly, so Feature is usable
// as a map key.
type Feature struct {
	Name  string
	Value Value
}

func (f Feature) String() string { return f.Name + "=" + f.Value.String() }

// Vector is the ordered feature list of one token.
type Vector []Feature

// Extract derives the fixed 54-entry feature vector of name:
// firstLetter, lastLetter, has(a)..has(z), count(a)..count(z).
// Extract is pure; callers are expected to normalize name first.
func Extract(name string) Vector {
	v := make(Vector, 0, Size)

	first, last := "", ""
	if r, n := utf8.DecodeRuneInString(name); n > 0 {
		first = string(r)
	}
	if r, n := utf8.DecodeLastRuneInString(name); n > 0 {
		last = string(r)
	}
	v = append(v,
		Feature{Name: NameFirstLetter, Value: Letter(first)},
		Feature{Name: NameLastLetter, Value: Letter(last)},
	)

	var counts [len(alphabet)]int
	for i := 0; i < len(name); i++ {
		if c := name[i]; c >= 'a' && c <= 'z' {
			counts[c-'a']++
		}
	}
	for i := range alphabet {
		v = append(v, Feature{Name: hasNames[i], Value: Flag(counts[i] > 0)})
	}
	for i := range alphabet {
		v = append(v, Feature{Name: countNames[i], Value: Count(counts[i])})
	}
	return v
}

// HasName returns the feature name of the presence flag for letter.
func HasName(letter byte) string { return "has(" + string(letter) + ")" }

// CountName returns the feature name of the occurrence count for letter.
func CountName(letter byte) string { return "count(" + string(letter) + ")" }

var hasNames, countNames = letterNames()

func letterNames() (has, count [len(alphabet)]string) {
	for i := range alphabet {
		has[i] = HasName(alphabet[i])
		count[i] = CountName(alphabet[i])
	}
	return has, count
}

// Names returns the feature names in extraction order.
func Names() []string {
	out := make([]string, 0, Size)
	out = append(out, NameFirstLetter, NameLastLetter)
	out = append(out, hasNames[:]...)
	out = append(out, countNames[:]...)
	return out
}

// Describe renders a vector as "name=value" pairs, skipping zero counts and
// false flags. It is meant for debug logging.
func Describe(v Vector) string {
	var b strings.Builder
	for _, f := range v {
		if n, ok := f.Value.AsCount(); ok && n == 0 {
			continue
		}
		if on, ok := f.Value.AsFlag(); ok && !on {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.String())
	}
	return b.String()
}
