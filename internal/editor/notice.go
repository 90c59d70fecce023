package editor

import (
	"errors"
	"fmt"

	"techsketch/internal/history"
	"techsketch/internal/tools"
)

// NoticeLevel grades a transient message shown to the user.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeWarn:
		return "warn"
	default:
		return "error"
	}
}

// Notice is a transient advisory message. It is replaced by the next notice
// and cleared at the start of the next action.
type Notice struct {
	Level NoticeLevel
	Text  string
}

func (e *Editor) notify(level NoticeLevel, format string, args ...interface{}) {
	e.notice = &Notice{Level: level, Text: fmt.Sprintf(format, args...)}
	switch level {
	case NoticeError:
		e.logger.Warnf("%s", e.notice.Text)
	default:
		e.logger.Debugf("%s", e.notice.Text)
	}
}

// report turns err into a notice and returns it unchanged.
func (e *Editor) report(err error) error {
	switch {
	case err == nil:
	case errors.Is(err, tools.ErrDegenerate):
		e.notify(NoticeInfo, "discarded: %v", err)
	case errors.Is(err, history.ErrNothingToUndo), errors.Is(err, history.ErrNothingToRedo):
		e.notify(NoticeInfo, "%v", err)
	case errors.Is(err, history.ErrLayerGone):
		e.notify(NoticeWarn, "skipped: %v", err)
	default:
		e.notify(NoticeError, "%v", err)
	}
	return err
}

// Notice returns the current notice, if any.
func (e *Editor) Notice() (Notice, bool) {
	if e.notice == nil {
		return Notice{}, false
	}
	return *e.notice, true
}

// ClearNotice drops the current notice.
func (e *Editor) ClearNotice() {
	e.notice = nil
}
