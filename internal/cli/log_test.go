// Copyright 2025 The gvplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Info("hello")
	if buf.Len() == 0 {
		t.Error("logger wrote nothing")
	}

	buf.Reset()
	logger.Debug("quiet")
	if buf.Len() != 0 {
		t.Errorf("info-level logger wrote a debug message: %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext did not return the attached logger")
	}

	// A bare context falls back to the package default.
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext returned nil for a bare context")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	p := newProgress(logger)
	p.done("Wrote plot.svg")

	out := buf.String()
	if !strings.Contains(out, "Wrote plot.svg") {
		t.Errorf("done output %q does not contain the message", out)
	}
	if !strings.Contains(out, "(") || !strings.Contains(out, ")") {
		t.Errorf("done output %q does not report a duration", out)
	}
}
