package sqlstore

import (
	"fmt"
	"slices"
	"strings"
)

const (
	pairSep  = ';'
	valueSep = '='
	escape   = '\\'
)

// encodeEnv serializes env as KEY=VAL;KEY2=VAL2 with keys sorted. Separators
// and backslashes inside keys or values are backslash escaped. A nil or empty
// mapping encodes to nil (NULL column).
func encodeEnv(env map[string]string) *string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(pairSep)
		}
		writeEscaped(&b, k)
		b.WriteByte(valueSep)
		writeEscaped(&b, env[k])
	}
	s := b.String()
	return &s
}

func writeEscaped(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case pairSep, valueSep, escape:
			b.WriteByte(escape)
		}
		b.WriteByte(s[i])
	}
}

func decodeEnv(raw *string) (map[string]string, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	s := *raw
	env := make(map[string]string)

	var (
		cur     strings.Builder
		key     string
		haveKey bool
	)
	flush := func() error {
		if !haveKey {
			return fmt.Errorf("env pair %q has no %c", cur.String(), valueSep)
		}
		if _, dup := env[key]; dup {
			return fmt.Errorf("env key %q appears twice", key)
		}
		env[key] = cur.String()
		cur.Reset()
		key, haveKey = "", false
		return nil
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == escape:
			if i+1 == len(s) {
				return nil, fmt.Errorf("env %q ends with a dangling escape", s)
			}
			i++
			cur.WriteByte(s[i])
		case c == valueSep && !haveKey:
			key, haveKey = cur.String(), true
			cur.Reset()
		case c == pairSep:
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			cur.WriteByte(c)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return env, nil
}
