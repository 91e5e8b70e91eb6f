package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	applogger "AirCast/pkg/logger"
)

func hookLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestLoggingHookRejectsEmptyPayload(t *testing.T) {
	h := LoggingHook(hookLogger(t))

	_, _, _, err := h.BeforeHandle(context.Background(), "aq.readings", kafka.Message{}, nil)
	if err == nil {
		t.Fatal("empty payload must be rejected")
	}
	var he *HookError
	if !errors.As(err, &he) || he.Code != "ERR_EMPTY_PAYLOAD" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoggingHookPassesPayloadThrough(t *testing.T) {
	h := LoggingHook(hookLogger(t))

	msg := kafka.Message{Partition: 3, Offset: 42}
	data := []byte(`{"area":"Anand Vihar"}`)
	_, gotMsg, gotData, err := h.BeforeHandle(context.Background(), "aq.readings", msg, data)
	if err != nil {
		t.Fatalf("BeforeHandle: %v", err)
	}
	if gotMsg.Offset != 42 || string(gotData) != string(data) {
		t.Fatal("payload must pass through unchanged")
	}

	// OnError must tolerate plain errors without a hook code
	h.OnError(context.Background(), "aq.readings", msg, data, errors.New("handler failed"))
}

func TestHookErrorUnwraps(t *testing.T) {
	inner := errors.New("bad frame")
	err := &HookError{Code: "ERR_DECODE", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("HookError must unwrap to the inner error")
	}
	if err.Error() != "ERR_DECODE: bad frame" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
