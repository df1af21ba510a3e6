package engine

import (
	"strconv"
	"strings"

	fiox "github.com/reoring/fiox"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling and
// max depth checks in a streaming fashion. It also tracks the JSON Pointer of
// the current token so errors can be located.

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate fiox.Severity
	MaxDepth    int
	// OnIssue receives non-fatal issues (duplicate keys under fiox.Warn).
	OnIssue func(Issue)
}

// Issue is a lightweight description of an enforcement finding.
type Issue struct {
	Code    string
	Pointer string
	Message string
	Offset  int64
}

// Issue codes.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeTooDeep      = "too_deep"
)

// IssueError is a fatal enforcement finding returned from NextToken.
type IssueError struct{ Issue }

func (e IssueError) Error() string { return e.Issue.Message }

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// Enforcer is a TokenSource wrapper returned by WrapWithEnforcement.
type Enforcer struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
	path  string
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy and the maximum nesting depth.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) *Enforcer {
	return &Enforcer{inner: inner, opt: opt}
}

func (e *Enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := e.pathForToken(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true, path: path}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{e.issue(CodeTooDeep, path, "max depth "+strconv.Itoa(e.opt.MaxDepth)+" exceeded", tok)}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if e.opt.OnDuplicate != fiox.Ignore {
					if _, ok := top.keys[tok.String]; ok {
						is := e.issue(CodeDuplicateKey, path, "key '"+tok.String+"' duplicated", tok)
						if e.opt.OnDuplicate == fiox.Fail {
							return Token{}, IssueError{is}
						}
						if e.opt.OnIssue != nil {
							e.opt.OnIssue(is)
						}
					}
					top.keys[tok.String] = struct{}{}
				}
				top.expectingKey = false
				top.pendingKey = tok.String
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.valueDone()
	}

	return tok, nil
}

func (e *Enforcer) issue(code, path, msg string, tok Token) Issue {
	return Issue{Code: code, Pointer: normalizePointer(path), Message: msg, Offset: tok.Offset}
}

// valueDone marks the pending member of the enclosing object as complete.
func (e *Enforcer) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *Enforcer) pathForToken(tok Token) string {
	if len(e.stack) == 0 {
		e.path = ""
		return e.path
	}

	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		e.path = joinPointer(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		switch {
		case top.kind == kindArray:
			e.path = joinPointer(top.path, strconv.Itoa(top.nextIndex))
			top.nextIndex++
		case !top.expectingKey:
			e.path = joinPointer(top.path, top.pendingKey)
		default:
			e.path = top.path
		}
	default:
		e.path = top.path
	}
	return e.path
}

// Pointer returns the JSON Pointer of the most recent token ("/" for the root).
func (e *Enforcer) Pointer() string { return normalizePointer(e.path) }

func (e *Enforcer) Location() int64 { return e.inner.Location() }

func normalizePointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
