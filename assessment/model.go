// Package assessment composes test question sets from the shared bank and
// grades submitted answers against them.
package assessment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which test model a reference points at.
type Kind string

const (
	KindSubTopic Kind = "subtopic"
	KindLevel    Kind = "level"
	KindModule   Kind = "module"
	KindExam     Kind = "exam"
)

var ErrInvalidRef = errors.New("invalid test model reference")

func (k Kind) Valid() bool {
	switch k {
	case KindSubTopic, KindLevel, KindModule, KindExam:
		return true
	}
	return false
}

// Ref is a parsed "<kind>-<id>" test model reference.
type Ref struct {
	Kind Kind
	ID   uint
}

func (r Ref) String() string {
	return fmt.Sprintf("%s-%d", r.Kind, r.ID)
}

// ParseModelRef parses ids such as "level-12" or "sub-topic-4".
func ParseModelRef(s string) (Ref, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	idx := strings.LastIndex(s, "-")
	if idx <= 0 || idx == len(s)-1 {
		return Ref{}, ErrInvalidRef
	}
	kind := Kind(strings.ReplaceAll(s[:idx], "-", ""))
	switch kind {
	case "subtopictest", "subtopic":
		kind = KindSubTopic
	case "leveltest":
		kind = KindLevel
	case "moduletest":
		kind = KindModule
	case "examconfiguration", "examconfig":
		kind = KindExam
	}
	if !kind.Valid() {
		return Ref{}, ErrInvalidRef
	}
	id, err := strconv.ParseUint(s[idx+1:], 10, 64)
	if err != nil || id == 0 {
		return Ref{}, ErrInvalidRef
	}
	return Ref{Kind: kind, ID: uint(id)}, nil
}
