package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dguik/discode/internal/logging"
	"github.com/dguik/discode/internal/messaging"
)

// taskStatus is the closed set of checklist task states (§4.5.1). Once a
// task reaches completed, TASK_UPDATE can never demote it (§8 invariant).
type taskStatus string

const (
	statusPending    taskStatus = "pending"
	statusInProgress taskStatus = "in_progress"
	statusCompleted  taskStatus = "completed"
)

var statusIcon = map[taskStatus]string{
	statusPending:    "⬜",
	statusInProgress: "🔄",
	statusCompleted:  "☑️",
}

type checklistTask struct {
	ID      int
	Subject string
	Status  taskStatus
}

type checklist struct {
	tasks     []*checklistTask
	nextID    int
	messageID string
}

// ChecklistStore holds one task checklist per serialization key, rebuilding
// and re-rendering the whole message on every mutation (§4.5.1).
type ChecklistStore struct {
	mu   sync.Mutex
	byKey map[string]*checklist
}

// NewChecklistStore creates an empty checklist store.
func NewChecklistStore() *ChecklistStore {
	return &ChecklistStore{byKey: make(map[string]*checklist)}
}

// Clear drops the checklist for key (session.end).
func (s *ChecklistStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byKey, key)
}

// Create appends a new pending task and re-renders the checklist message.
func (s *ChecklistStore) Create(ctx context.Context, key, channel, subject string, msg messaging.Messaging, log *logging.Logger) {
	s.mu.Lock()
	cl, ok := s.byKey[key]
	if !ok {
		cl = &checklist{nextID: 1}
		s.byKey[key] = cl
	}
	cl.nextID++
	task := &checklistTask{ID: cl.nextID - 1, Subject: subject, Status: statusPending}
	cl.tasks = append(cl.tasks, task)
	s.mu.Unlock()

	s.render(ctx, key, channel, msg, log)
}

// Update mutates the matching task (status and/or subject) and re-renders.
// A completed task can never be demoted by a later update (§8 invariant).
func (s *ChecklistStore) Update(ctx context.Context, key, channel, taskIDStr, status, subject string, msg messaging.Messaging, log *logging.Logger) {
	id, err := strconv.Atoi(taskIDStr)
	if err != nil {
		return // malformed taskId: swallowed per §4.5.1 parse-error policy
	}

	s.mu.Lock()
	cl, ok := s.byKey[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	for _, t := range cl.tasks {
		if t.ID != id {
			continue
		}
		if t.Status == statusCompleted {
			break // no demotion once completed
		}
		if status != "" {
			t.Status = taskStatus(status)
		}
		if subject != "" {
			t.Subject = subject
		}
		break
	}
	s.mu.Unlock()

	s.render(ctx, key, channel, msg, log)
}

// DemoteInProgress clears any in_progress task back to pending (tool.failure,
// §4.5 "clear any owning task's in_progress to pending").
func (s *ChecklistStore) DemoteInProgress(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cl, ok := s.byKey[key]
	if !ok {
		return
	}
	for _, t := range cl.tasks {
		if t.Status == statusInProgress {
			t.Status = statusPending
		}
	}
}

// render rebuilds the checklist text and posts or edits the message,
// remembering its id for subsequent edits.
func (s *ChecklistStore) render(ctx context.Context, key, channel string, msg messaging.Messaging, log *logging.Logger) {
	s.mu.Lock()
	cl, ok := s.byKey[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	text := renderChecklistText(cl.tasks)
	messageID := cl.messageID
	s.mu.Unlock()

	if messageID == "" {
		id, err := msg.SendToChannelWithId(ctx, channel, text)
		if err != nil {
			log.Warn("failed to post checklist message", zap.Error(err))
			return
		}
		s.mu.Lock()
		if cl, ok := s.byKey[key]; ok {
			cl.messageID = id
		}
		s.mu.Unlock()
		return
	}

	if err := msg.UpdateMessage(ctx, channel, messageID, text); err != nil {
		log.Warn("failed to edit checklist message", zap.Error(err))
	}
}

func renderChecklistText(tasks []*checklistTask) string {
	completed := 0
	for _, t := range tasks {
		if t.Status == statusCompleted {
			completed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 작업 목록 (%d/%d 완료)", completed, len(tasks))
	for _, t := range tasks {
		icon := statusIcon[t.Status]
		fmt.Fprintf(&b, "\n%s #%d %s", icon, t.ID, t.Subject)
	}
	return b.String()
}
