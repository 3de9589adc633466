package telegram

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/easayliu/tg-autorename/internal/application/contracts"
	"github.com/easayliu/tg-autorename/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type recordingQueue struct {
	mu     sync.Mutex
	jobs   []*contracts.RenameJob
	closed bool
}

func (q *recordingQueue) Enqueue(job *contracts.RenameJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

func (q *recordingQueue) Stats() contracts.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return contracts.QueueStats{Pending: len(q.jobs)}
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

type scriptedSource struct {
	mu      sync.Mutex
	batches [][]tgbotapi.Update
	offsets []int64
}

func (s *scriptedSource) GetUpdates(offset int64, _ int) ([]tgbotapi.Update, error) {
	s.mu.Lock()
	s.offsets = append(s.offsets, offset)
	if len(s.batches) > 0 {
		batch := s.batches[0]
		s.batches = s.batches[1:]
		s.mu.Unlock()
		return batch, nil
	}
	s.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	return nil, nil
}

func privateChat() *tgbotapi.Chat { return &tgbotapi.Chat{ID: 1, Type: "private"} }

func TestIsRenameCandidate(t *testing.T) {
	tests := []struct {
		name string
		msg  *tgbotapi.Message
		want bool
	}{
		{"nil", nil, false},
		{"private document", &tgbotapi.Message{Chat: privateChat(), Document: &tgbotapi.Document{FileID: "d"}}, true},
		{"private video", &tgbotapi.Message{Chat: privateChat(), Video: &tgbotapi.Video{FileID: "v"}}, true},
		{"private audio", &tgbotapi.Message{Chat: privateChat(), Audio: &tgbotapi.Audio{FileID: "a"}}, true},
		{"private text", &tgbotapi.Message{Chat: privateChat(), Text: "/autorename E{episode}"}, false},
		{"group video", &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -100, Type: "supergroup"}, Video: &tgbotapi.Video{FileID: "v"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRenameCandidate(tt.msg); got != tt.want {
				t.Errorf("IsRenameCandidate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageHandlerQueueClosed(t *testing.T) {
	queue := &recordingQueue{closed: true}
	h := NewMessageHandler(nil, queue)
	update := &tgbotapi.Update{Message: &tgbotapi.Message{Chat: privateChat(), Video: &tgbotapi.Video{FileID: "v"}}}

	if h.HandleMessage(update) {
		t.Fatal("closed queue should reject the job")
	}
}

func TestPollingDispatchesMedia(t *testing.T) {
	queue := &recordingQueue{}
	source := &scriptedSource{batches: [][]tgbotapi.Update{{
		{UpdateID: 10, Message: &tgbotapi.Message{MessageID: 1, Chat: privateChat(), Video: &tgbotapi.Video{FileID: "v"}}},
		{UpdateID: 11, Message: &tgbotapi.Message{MessageID: 2, Chat: privateChat(), Text: "hello"}},
		{UpdateID: 12, Message: &tgbotapi.Message{MessageID: 3, Chat: privateChat(), Document: &tgbotapi.Document{FileID: "d"}}},
	}}}
	c := NewTelegramController(&config.TelegramConfig{PollTimeout: 1}, source, NewMessageHandler(nil, queue))

	c.StartPolling(context.Background())
	deadline := time.Now().Add(3 * time.Second)
	for c.LastUpdateID() != 12 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.StopPolling()

	if c.LastUpdateID() != 12 {
		t.Fatalf("LastUpdateID() = %d, want 12", c.LastUpdateID())
	}
	if queue.count() != 2 {
		t.Fatalf("queued %d jobs, want 2", queue.count())
	}

	source.mu.Lock()
	defer source.mu.Unlock()
	if len(source.offsets) < 2 || source.offsets[0] != 1 || source.offsets[1] != 13 {
		t.Errorf("offsets = %v, want [1 13 ...]", source.offsets)
	}
}

func TestStopPollingWithoutStart(t *testing.T) {
	c := NewTelegramController(&config.TelegramConfig{}, &scriptedSource{}, NewMessageHandler(nil, &recordingQueue{}))
	c.StopPolling()
}

func TestWebhook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	queue := &recordingQueue{}
	c := NewTelegramController(&config.TelegramConfig{}, &scriptedSource{}, NewMessageHandler(nil, queue))

	router := gin.New()
	router.POST("/hook", c.Webhook)

	body := `{"update_id":42,"message":{"message_id":5,"chat":{"id":1,"type":"private"},"audio":{"file_id":"a1","duration":3}}}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", bytes.NewBufferString(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if queue.count() != 1 {
		t.Fatalf("queued %d jobs, want 1", queue.count())
	}
	if c.LastUpdateID() != 42 {
		t.Errorf("LastUpdateID() = %d, want 42", c.LastUpdateID())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", bytes.NewBufferString("{not json")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
