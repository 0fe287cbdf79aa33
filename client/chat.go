package client

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shreyasiddheshwar12/orangesample/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is the wall-clock delay between transcript refreshes
const DefaultPollInterval = 5 * time.Second

var (
	ErrViewClosed      = errors.New("chat view is closed")
	ErrViewNotOpen     = errors.New("chat view is not open")
	ErrViewOpenAlready = errors.New("chat view is already open")
)

type viewState int

const (
	stateNew viewState = iota
	stateOpening
	stateOpen
	stateClosed
)

// ChatAPI is the part of the API a chat view needs
type ChatAPI interface {
	GetRequest(ctx context.Context, requestID string) (*models.Request, error)
	GetMessages(ctx context.Context, requestID string) ([]models.Message, error)
	SendMessage(ctx context.Context, requestID, text string) (*models.Message, error)
}

// ChatOptions configures a ChatView
type ChatOptions struct {
	// PollInterval defaults to DefaultPollInterval
	PollInterval time.Duration

	// OnUpdate, if set, receives a copy of the transcript after every change.
	// It may be called from several goroutines at once.
	OnUpdate func([]models.Message)

	Logger logrus.FieldLogger
}

// ChatView mirrors one request's transcript. After Open it refreshes the
// transcript on a fixed ticker until Close; every refresh replaces the local
// copy wholesale.
type ChatView struct {
	api       ChatAPI
	requestID string
	interval  time.Duration
	onUpdate  func([]models.Message)
	log       logrus.FieldLogger

	mu       sync.Mutex
	request  *models.Request
	messages []models.Message
	// gen counts poll starts and local sends; a poll result is applied only
	// if nothing newer has been applied since the poll started
	gen     uint64
	applied uint64
	state   viewState

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChatView creates a view of requestID. Nothing is fetched until Open.
func NewChatView(api ChatAPI, requestID string, opts ChatOptions) *ChatView {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &ChatView{
		api:       api,
		requestID: requestID,
		interval:  opts.PollInterval,
		onUpdate:  opts.OnUpdate,
		log:       opts.Logger.WithField("request_id", requestID),
	}
}

// Open fetches the request and its transcript in parallel and starts polling.
// Either fetch failing aborts the view for good; the caller should navigate away.
func (v *ChatView) Open(ctx context.Context) error {
	v.mu.Lock()
	switch v.state {
	case stateClosed:
		v.mu.Unlock()
		return ErrViewClosed
	case stateOpening, stateOpen:
		v.mu.Unlock()
		return ErrViewOpenAlready
	}
	v.state = stateOpening
	viewCtx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.wg.Add(1)
	v.mu.Unlock()
	defer v.wg.Done()

	// Close cancels the initial fetch too
	fetchCtx, fetchCancel := context.WithCancel(ctx)
	defer fetchCancel()
	stop := context.AfterFunc(viewCtx, fetchCancel)
	defer stop()

	var (
		request  *models.Request
		messages []models.Message
	)
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		request, err = v.api.GetRequest(gctx, v.requestID)
		return err
	})
	g.Go(func() error {
		var err error
		messages, err = v.api.GetMessages(gctx, v.requestID)
		return err
	})
	err := g.Wait()

	v.mu.Lock()
	if v.state == stateClosed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if err != nil {
		v.state = stateClosed
		v.mu.Unlock()
		cancel()
		return err
	}
	v.state = stateOpen
	v.request = request
	v.messages = messages
	v.wg.Add(1)
	v.mu.Unlock()

	v.notify()
	go v.loop(viewCtx)
	return nil
}

// loop fires a poll on every tick. Each poll runs on its own goroutine so a
// slow response never delays the next tick.
func (v *ChatView) loop(ctx context.Context) {
	defer v.wg.Done()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			v.wg.Add(1)
			go v.poll(ctx)
		}
	}
}

func (v *ChatView) poll(ctx context.Context) {
	defer v.wg.Done()

	v.mu.Lock()
	v.gen++
	started := v.gen
	v.mu.Unlock()

	messages, err := v.api.GetMessages(ctx, v.requestID)
	if err != nil {
		if ctx.Err() == nil {
			v.log.WithError(err).Debug("Transcript refresh failed")
		}
		return
	}

	v.mu.Lock()
	if v.state == stateClosed || started <= v.applied {
		v.mu.Unlock()
		v.log.WithField("poll", started).Debug("Discarding stale transcript")
		return
	}
	v.applied = started
	v.messages = messages
	v.mu.Unlock()

	v.notify()
}

// Send posts text and appends the stored message locally without waiting for
// the next refresh.
func (v *ChatView) Send(ctx context.Context, text string) (*models.Message, error) {
	v.mu.Lock()
	switch v.state {
	case stateClosed:
		v.mu.Unlock()
		return nil, ErrViewClosed
	case stateNew, stateOpening:
		v.mu.Unlock()
		return nil, ErrViewNotOpen
	}
	v.mu.Unlock()

	msg, err := v.api.SendMessage(ctx, v.requestID, text)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	if v.state == stateClosed {
		v.mu.Unlock()
		return msg, nil
	}
	v.messages = append(v.messages, *msg)
	v.gen++
	v.applied = v.gen
	v.mu.Unlock()

	v.notify()
	return msg, nil
}

// Request returns the request loaded by Open
func (v *ChatView) Request() *models.Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.request == nil {
		return nil
	}
	request := *v.request
	return &request
}

// Messages returns a copy of the local transcript
func (v *ChatView) Messages() []models.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Message(nil), v.messages...)
}

// Close stops polling and waits for in-flight refreshes. No API call is made
// once Close returns. Close is idempotent.
func (v *ChatView) Close() {
	v.mu.Lock()
	if v.state == stateClosed {
		v.mu.Unlock()
		v.wg.Wait()
		return
	}
	v.state = stateClosed
	cancel := v.cancel
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	v.wg.Wait()
}

func (v *ChatView) notify() {
	if v.onUpdate == nil {
		return
	}
	v.onUpdate(v.Messages())
}
