// SPDX-License-Identifier: EPL-2.0

package keypad

import (
	"bytes"
	"log/slog"
	"strings"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func containsLog(buf *bytes.Buffer, msg string) bool {
	return strings.Contains(buf.String(), msg)
}
