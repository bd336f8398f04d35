package search

import (
	"fmt"

	"github.com/MrSnakeDoc/moteur/internal/apperr"
)

// Status is the lifecycle state of a Controller.
type Status int

const (
	StatusIdle    Status = iota // no search yet
	StatusLoading               // request in flight
	StatusSuccess               // at least one listing
	StatusEmpty                 // search completed with zero listings
	StatusError                 // validation or fetch failure
)

var statusNames = map[Status]string{
	StatusIdle:    "idle",
	StatusLoading: "loading",
	StatusSuccess: "success",
	StatusEmpty:   "empty",
	StatusError:   "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for st, name := range statusNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown search status %q", text)
}

// User-facing messages. Raw failure details are logged, never shown.
const (
	MsgCredentialRequired = "المرجو إدخال المفتاح السري ديال API."
	MsgQueryRequired      = "المرجو إدخال معلومات البحث"
	MsgCredentialInvalid  = "المفتاح السري ديال API ماشي صحيح أو فيه شي مشكل. تأكد منو."
	MsgServerProblem      = "وقع شي مشكل فالسيرفر. عاود حاول من بعد."
)

// MessageFor returns the message shown for a failed fetch of the given kind.
func MessageFor(kind apperr.Kind) string {
	if kind == apperr.KindCredential {
		return MsgCredentialInvalid
	}
	return MsgServerProblem
}
