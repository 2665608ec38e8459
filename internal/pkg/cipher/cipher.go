// Package cipher implements the reversible position-dependent substitution
// cipher used to obfuscate inbound SMS payloads.
//
// This is NOT a security boundary: the transform is symmetric, the secret is
// shared with every client build, and the alphabet is public. It only keeps
// casual observers from reading panic-alert payloads off an SMS gateway log.
// Authentication happens later, when the decoded user id is resolved.
package cipher

import (
	"fmt"
	"regexp"
	"strings"
)

// Codec encodes and decodes strings over an alphabet built by scanning code
// points 32..382 and keeping the characters that match a character-class
// pattern. The alphabet defines a bijection between runes and positions.
type Codec struct {
	alphabet []rune
	index    map[rune]int
}

// alphabet code point scan range, inclusive.
const (
	alphabetFirst = 32
	alphabetLast  = 382
)

// New compiles pattern and builds the codec alphabet from it.
func New(pattern string) (*Codec, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile alphabet pattern: %w", err)
	}
	c := &Codec{index: make(map[rune]int)}
	for cp := alphabetFirst; cp <= alphabetLast; cp++ {
		r := rune(cp)
		if re.MatchString(string(r)) {
			c.index[r] = len(c.alphabet)
			c.alphabet = append(c.alphabet, r)
		}
	}
	if len(c.alphabet) == 0 {
		return nil, fmt.Errorf("alphabet pattern %q matches no characters", pattern)
	}
	return c, nil
}

// Encode rotates every rune of plaintext forward by its position-dependent
// delta. Fails if any rune is outside the alphabet.
func (c *Codec) Encode(plaintext, secret string) (string, error) {
	return c.rotate(plaintext, secret, 1)
}

// Decode is the inverse of Encode.
func (c *Codec) Decode(ciphertext, secret string) (string, error) {
	return c.rotate(ciphertext, secret, -1)
}

// rotate processes runes from last to first, matching the reference
// implementation; the per-rune delta depends only on the rune's index so the
// order does not change the result.
func (c *Codec) rotate(in, secret string, sign int) (string, error) {
	runes := []rune(in)
	out := make([]rune, len(runes))
	n := len(c.alphabet)
	for j := len(runes) - 1; j >= 0; j-- {
		pos, ok := c.index[runes[j]]
		if !ok {
			return "", fmt.Errorf("character %q at index %d is outside the alphabet", runes[j], j)
		}
		shifted := (pos + sign*c.delta(j, secret)) % n
		if shifted < 0 {
			shifted += n
		}
		out[j] = c.alphabet[shifted]
	}
	return string(out), nil
}

// delta computes the rotation for index j: the sum over secret runes of
// (j + i*codepoint), reduced modulo the alphabet size.
func (c *Codec) delta(j int, secret string) int {
	sum := 0
	for i, r := range []rune(secret) {
		sum += j + i*int(r)
	}
	return sum % len(c.alphabet)
}

// Decode is a convenience wrapper building a one-shot codec.
func Decode(pattern, ciphertext, secret string) (string, error) {
	c, err := New(pattern)
	if err != nil {
		return "", err
	}
	return c.Decode(ciphertext, secret)
}

// Encode is a convenience wrapper building a one-shot codec.
func Encode(pattern, plaintext, secret string) (string, error) {
	c, err := New(pattern)
	if err != nil {
		return "", err
	}
	return c.Encode(plaintext, secret)
}

// Alphabet returns the alphabet as a string, mainly for diagnostics.
func (c *Codec) Alphabet() string {
	var b strings.Builder
	for _, r := range c.alphabet {
		b.WriteRune(r)
	}
	return b.String()
}
