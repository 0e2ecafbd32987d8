package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kennelworks/kennelworks/internal/export"
)

// Notification is one captured Notify call.
type Notification struct {
	Title string
	Body  string
}

// CaptureNotifier records notifications for assertions.
type CaptureNotifier struct {
	mu            sync.Mutex
	Notifications []Notification
}

func NewCaptureNotifier() *CaptureNotifier {
	return &CaptureNotifier{}
}

func (n *CaptureNotifier) Notify(_ context.Context, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notifications = append(n.Notifications, Notification{Title: title, Body: body})
}

func (n *CaptureNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notifications = nil
}

// CaptureExporter records exported snapshots, optionally failing to
// exercise the backup error path.
type CaptureExporter struct {
	mu        sync.Mutex
	Snapshots []*export.Snapshot
	Err       error
}

func NewCaptureExporter() *CaptureExporter {
	return &CaptureExporter{}
}

func (e *CaptureExporter) Export(_ context.Context, snapshot *export.Snapshot) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return "", e.Err
	}
	e.Snapshots = append(e.Snapshots, snapshot)
	return fmt.Sprintf("memory://backup/%d", len(e.Snapshots)), nil
}

func (e *CaptureExporter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Snapshots = nil
	e.Err = nil
}
