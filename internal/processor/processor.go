package processor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omriShneor/alfred_line/internal/auth"
	"github.com/omriShneor/alfred_line/internal/calstore"
	"github.com/omriShneor/alfred_line/internal/dispatch"
	"github.com/omriShneor/alfred_line/internal/history"
	"github.com/omriShneor/alfred_line/internal/llm"
	"github.com/omriShneor/alfred_line/internal/metrics"
	"github.com/omriShneor/alfred_line/internal/schedule"
	"github.com/omriShneor/alfred_line/internal/source"
)

const (
	defaultHistorySize = history.DefaultLimit
	defaultWorkerCount = 2
)

const (
	routeSchedule = "schedule"
	routeChat     = "chat"
	routeDropped  = "dropped"
)

// Deps are the collaborators a Processor needs. Lifecycles are owned by the caller.
type Deps struct {
	Completer  llm.Completer
	History    *history.Store
	Calendars  calstore.Store
	Dispatcher *dispatch.Dispatcher
	AllowList  *auth.AllowList
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Config tunes a Processor.
type Config struct {
	HistorySize   int
	WorkerCount   int
	PublicBaseURL string
}

// Processor handles inbound chat messages: it routes scheduling requests to
// extraction and everything else to the conversational LLM call.
type Processor struct {
	completer     llm.Completer
	extractor     *schedule.Extractor
	history       *history.Store
	calendars     calstore.Store
	dispatcher    *dispatch.Dispatcher
	allowList     *auth.AllowList
	metrics       *metrics.Metrics
	logger        *zap.Logger
	msgChan       <-chan source.Message
	historySize   int
	workerCount   int
	publicBaseURL string
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new message processor
func New(deps Deps, msgChan <-chan source.Message, cfg Config) *Processor {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		completer:     deps.Completer,
		extractor:     schedule.NewExtractor(deps.Completer, logger),
		history:       deps.History,
		calendars:     deps.Calendars,
		dispatcher:    deps.Dispatcher,
		allowList:     deps.AllowList,
		metrics:       deps.Metrics,
		logger:        logger,
		msgChan:       msgChan,
		historySize:   cfg.HistorySize,
		workerCount:   cfg.WorkerCount,
		publicBaseURL: cfg.PublicBaseURL,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins processing messages from the channel
func (p *Processor) Start() error {
	p.logger.Info("message processor started", zap.Int("workers", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.processLoop()
	}

	return nil
}

// Stop gracefully shuts down the processor
func (p *Processor) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("message processor stopped")
}

// processLoop continuously reads messages from the channel and processes them
func (p *Processor) processLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case msg, ok := <-p.msgChan:
			if !ok {
				p.logger.Info("message channel closed")
				return
			}
			if err := p.HandleMessage(p.ctx, msg); err != nil {
				p.logger.Error("failed to deliver reply",
					zap.String("conversation_id", msg.ConversationID),
					zap.Error(err),
				)
			}
		}
	}
}

// HandleMessage processes one message end to end. Unauthorized senders are
// dropped without a reply. Every other failure is turned into a reply, so
// the returned error only reports that the reply itself could not be sent.
func (p *Processor) HandleMessage(ctx context.Context, msg source.Message) error {
	if !p.allowList.Allows(msg.Identities()...) {
		p.logger.Debug("dropping message from unlisted sender",
			zap.String("sender_id", msg.SenderID),
			zap.String("conversation_id", msg.ConversationID),
		)
		p.metrics.MessageRouted(routeDropped)
		return nil
	}

	route := routeChat
	if schedule.IsRequest(msg.Text) {
		route = routeSchedule
	}
	p.metrics.MessageRouted(route)

	p.logger.Info("processing message",
		zap.String("route", route),
		zap.String("kind", string(msg.Kind)),
		zap.String("conversation_id", msg.ConversationID),
		zap.String("text", truncate(msg.Text, 50)),
	)

	// The transcript is read before this message is recorded so the prompt
	// does not contain it twice.
	var turns []history.Turn
	if route == routeChat {
		turns = p.history.Recent(ctx, msg.ConversationID, p.historySize)
	}
	p.history.Append(ctx, msg.ConversationID, history.RoleUser, msg.Text)

	var (
		reply string
		err   error
	)
	if route == routeSchedule {
		reply, err = p.handleSchedule(ctx, msg)
	} else {
		reply, err = p.handleChat(ctx, msg, turns)
	}
	if err != nil {
		p.logger.Error("message handling failed",
			zap.String("route", route),
			zap.String("conversation_id", msg.ConversationID),
			zap.String("kind", llm.KindOf(err).String()),
			zap.Error(err),
		)
		reply = userFacingError(err)
	} else {
		p.history.Append(ctx, msg.ConversationID, history.RoleAssistant, reply)
	}

	mode, err := p.dispatcher.Deliver(ctx, dispatch.Target{
		ReplyToken:     msg.ReplyToken,
		ConversationID: msg.ConversationID,
	}, reply)
	if err != nil {
		return err
	}
	p.metrics.ReplySent(string(mode))
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
