package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyAction = errors.New("action: nothing to run")
	ErrNoRunner    = errors.New("action: executor has no runner")
)

// Action is a user-supplied unit of work. Either Script (run through a
// shell, with positional arguments as $1..$n) or Command (argv, with the
// arguments appended) must be set.
type Action struct {
	Name    string            `json:"name,omitempty"`
	Script  string            `json:"script,omitempty"`
	Command []string          `json:"command,omitempty"`
	Shell   string            `json:"shell,omitempty"`
	Dir     string            `json:"dir,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Timeout time.Duration     `json:"timeout,omitempty"`
}

func (a Action) IsZero() bool {
	return strings.TrimSpace(a.Script) == "" && len(a.Command) == 0
}

// Label is a short human-readable identifier used in logs and errors.
func (a Action) Label() string {
	if s := strings.TrimSpace(a.Name); s != "" {
		return s
	}
	if len(a.Command) > 0 {
		return a.Command[0]
	}
	s := strings.TrimSpace(a.Script)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}

// ExecutionError is returned when an action ran but failed.
type ExecutionError struct {
	Action   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	b.WriteString("action ")
	b.WriteString(strconv.Quote(e.Action))
	if e.ExitCode != 0 {
		b.WriteString(" exited with code ")
		b.WriteString(strconv.Itoa(e.ExitCode))
	} else if e.Err != nil {
		b.WriteString(" failed: ")
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(" failed")
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// FormatArgs renders positional arguments for the runner. Strings pass
// through untouched; structured values are JSON-encoded.
func FormatArgs(args []any) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, FormatArg(a))
	}
	return out
}

func FormatArg(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case error:
		return x.Error()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// ParseOutput turns captured stdout into a value: JSON when it parses,
// otherwise the trimmed text. Empty output yields nil.
func ParseOutput(stdout []byte) any {
	s := strings.TrimSpace(string(stdout))
	if s == "" {
		return nil
	}
	if json.Valid([]byte(s)) {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}
