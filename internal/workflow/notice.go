package workflow

import (
	"fmt"

	"github.com/spec-kit/job-board/internal/domain"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is the toast shown to the user after an operation.
type Notice struct {
	Level   Level
	Message string
}

func (n Notice) String() string {
	return fmt.Sprintf("[%s] %s", n.Level, n.Message)
}

// Success builds a success notice.
func Success(format string, args ...any) Notice {
	return Notice{Level: LevelSuccess, Message: fmt.Sprintf(format, args...)}
}

// ClosedNotice is the notice shown once a task has been closed for reason.
func ClosedNotice(reason domain.CloseReason) Notice {
	if reason == domain.CloseCancel {
		return Success("Task cancelled")
	}
	return Success("Task marked as done")
}

// NoticeFor converts an operation error into the notice shown for it. A nil error
// yields an empty info notice.
func NoticeFor(err error) Notice {
	if err == nil {
		return Notice{Level: LevelInfo}
	}
	derr := apperrors.ToDomainError(err)
	switch derr.Code {
	case apperrors.CodeTransport:
		return Notice{Level: LevelError, Message: "Could not reach the job board. Check your connection and try again."}
	case apperrors.CodeBusy:
		return Notice{Level: LevelInfo, Message: "Please wait, " + derr.Message + "."}
	case apperrors.CodeDuplicateAcceptance:
		return Notice{Level: LevelError, Message: "You have already accepted this job."}
	case apperrors.CodeConflict:
		return Notice{Level: LevelError, Message: "This job has already been accepted by someone else."}
	case apperrors.CodeInternal:
		return Notice{Level: LevelError, Message: "Something went wrong. Please try again."}
	default:
		return Notice{Level: LevelError, Message: derr.Message}
	}
}
