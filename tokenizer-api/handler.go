// Package tokenizerapi implements the take-a-number ticketing protocol:
// queues hand out monotonically increasing token numbers to subscribers, and
// queue owners advance a processed-token cursor to consume them in order.
// All shared counters are mutated exclusively through conditional updates in
// the store, which is the sole serialization point per queue.
package tokenizerapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	tokenizercli "github.com/tokenizer-systems/tokenizer-go/tokenizer-cli"
)

type actionFunc func(ctx context.Context, req Request) (Response, error)

// Handler routes authenticated requests to the core services and shapes the
// response envelope. Construct once per process and reuse; it carries no
// per-queue state.
type Handler struct {
	Issuer        *TokenIssuer
	Consumer      *TokenConsumer
	Subscriptions *SubscriptionManager
	Lifecycle     *QueueLifecycle
	Authz         *AuthorizationGate
	Logger        zerolog.Logger

	metrics *tokenizercli.Metrics
	routes  map[Action]actionFunc
}

// NewHandler wires the core services onto the given stores and builds the
// action routing table.
func NewHandler(service tokenizercli.Service, queues QueueStore, subs SubscriptionStore, metrics *tokenizercli.Metrics) *Handler {
	issuer := NewTokenIssuer(queues)
	manager := NewSubscriptionManager(subs, issuer)
	authz := NewAuthorizationGate(manager)

	h := &Handler{
		Issuer:        issuer,
		Consumer:      NewTokenConsumer(queues, subs, authz),
		Subscriptions: manager,
		Lifecycle:     NewQueueLifecycle(queues, manager, authz),
		Authz:         authz,
		Logger:        tokenizercli.Logger(service),
		metrics:       metrics,
	}
	h.routes = map[Action]actionFunc{
		ActionCreateQueue:   h.createQueue,
		ActionDescribeQueue: h.describeQueue,
		ActionUpdateQueue:   h.updateQueue,
		ActionDeleteQueue:   h.deleteQueue,
		ActionListQueues:    h.listQueues,
		ActionSubscribe:     h.subscribe,
		ActionUnsubscribe:   h.unsubscribe,
		ActionProcessNext:   h.processNext,
		ActionDescribeUser:  h.describeUser,
	}
	return h
}

// Dispatch runs one request end to end: authentication short-circuit, action
// lookup, service call, and error-kind to envelope translation.
func (h *Handler) Dispatch(ctx context.Context, req Request) Response {
	logger := h.Logger.With().
		Str("action", string(req.Action)).
		Str("correlation_id", req.CorrelationID).
		Logger()
	ctx = logger.WithContext(ctx)

	if h.metrics != nil {
		defer h.metrics.Timing(ctx, tokenizercli.ResponseTimeMetric, time.Now(), map[tokenizercli.DimensionName]string{
			tokenizercli.ActionNameDimension: string(req.Action),
		})
	}

	if req.RequesterID == "" {
		return Response{StatusCode: 401, Message: "Unauthenticated. Login before invoking the API."}
	}

	action, ok := h.routes[req.Action]
	if !ok {
		return Response{StatusCode: 400, Message: fmt.Sprintf("unknown action %v", req.Action)}
	}

	resp, err := action(ctx, req)
	if err != nil {
		return h.failure(ctx, req, err)
	}
	if resp.Message == "" {
		resp.Message = SuccessMessage
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = 200
	}
	return resp
}

// failure maps error kinds onto envelope status codes. Unclassified errors
// are reported generically with a correlation ID for support diagnosis,
// without exposing storage internals.
func (h *Handler) failure(ctx context.Context, req Request, err error) Response {
	logger := zerolog.Ctx(ctx)

	switch {
	case errors.Is(err, ErrQueueNotFound), errors.Is(err, ErrSubscriptionNotFound):
		return Response{StatusCode: 404, Message: err.Error()}
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrQueueExhausted),
		errors.Is(err, ErrCannotUnsubscribeOwner), errors.Is(err, ErrConditionFailed):
		return Response{StatusCode: 400, Message: err.Error()}
	case errors.Is(err, ErrNotOwner):
		return Response{StatusCode: 401, Message: err.Error()}
	case errors.Is(err, ErrAlreadySubscribed):
		return Response{StatusCode: 409, Message: err.Error()}
	case errors.Is(err, errMissingParameter), errors.Is(err, errInvalidParameter):
		return Response{StatusCode: 400, Message: err.Error()}
	default:
		logger.Error().Err(err).Msg("unclassified failure")
		if h.metrics != nil {
			h.metrics.Event(ctx, tokenizercli.UnclassifiedFailureMetric, map[tokenizercli.DimensionName]string{
				tokenizercli.ActionNameDimension: string(req.Action),
			})
		}
		return Response{
			StatusCode: 502,
			Message:    fmt.Sprintf("An unexpected error occurred. Contact support with reference id %v.", req.CorrelationID),
		}
	}
}

var (
	errMissingParameter = errors.New("missing parameter")
	errInvalidParameter = errors.New("invalid parameter")
)

func requireParam(req Request, name string) (string, error) {
	value := req.Param(name)
	if value == "" {
		return "", fmt.Errorf("%v: %w", name, errMissingParameter)
	}
	return value, nil
}

func (h *Handler) createQueue(ctx context.Context, req Request) (Response, error) {
	maxSize := 0
	if raw := req.Param(ParamQueueMaxSize); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return Response{}, fmt.Errorf("%v must be a positive integer: %w", ParamQueueMaxSize, errInvalidParameter)
		}
		maxSize = parsed
	}
	disabled, _ := strconv.ParseBool(req.Param(ParamDisabled))

	queueID, err := h.Lifecycle.Create(ctx, req.RequesterID, req.Param(ParamQueueName), maxSize, disabled)
	if err != nil {
		return Response{}, err
	}
	return Response{StatusCode: 201, Values: CreateQueueResult{QueueID: queueID}}, nil
}

func (h *Handler) describeQueue(ctx context.Context, req Request) (Response, error) {
	queueID, err := requireParam(req, ParamQueueID)
	if err != nil {
		return Response{}, err
	}
	queue, err := h.Lifecycle.Describe(ctx, queueID)
	if err != nil {
		return Response{}, err
	}
	return Response{Values: queue}, nil
}

func (h *Handler) updateQueue(ctx context.Context, req Request) (Response, error) {
	queueID, err := requireParam(req, ParamQueueID)
	if err != nil {
		return Response{}, err
	}

	var queueName *string
	if raw, ok := req.Params[ParamQueueName]; ok {
		queueName = &raw
	}
	var maxSize *int
	if raw := req.Param(ParamQueueMaxSize); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return Response{}, fmt.Errorf("%v must be a positive integer: %w", ParamQueueMaxSize, errInvalidParameter)
		}
		maxSize = &parsed
	}
	var disabled *bool
	if raw := req.Param(ParamDisabled); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Response{}, fmt.Errorf("%v must be a boolean: %w", ParamDisabled, errInvalidParameter)
		}
		disabled = &parsed
	}

	if err := h.Lifecycle.Update(ctx, queueID, queueName, maxSize, disabled); err != nil {
		return Response{}, err
	}
	return Response{}, nil
}

func (h *Handler) deleteQueue(ctx context.Context, req Request) (Response, error) {
	queueID, err := requireParam(req, ParamQueueID)
	if err != nil {
		return Response{}, err
	}
	if err := h.Lifecycle.Delete(ctx, req.RequesterID, queueID); err != nil {
		return Response{}, err
	}
	return Response{}, nil
}

func (h *Handler) listQueues(ctx context.Context, req Request) (Response, error) {
	queues, next, err := h.Lifecycle.ListQueues(ctx, req.Param(ParamPaginationToken))
	if err != nil {
		return Response{}, err
	}
	return Response{Values: queues, PaginationToken: next}, nil
}

func (h *Handler) subscribe(ctx context.Context, req Request) (Response, error) {
	queueID, err := requireParam(req, ParamQueueID)
	if err != nil {
		return Response{}, err
	}
	token, err := h.Subscriptions.Subscribe(ctx, req.RequesterID, queueID)
	if err != nil {
		return Response{}, err
	}
	return Response{StatusCode: 201, Values: SubscribeResult{TokenNumber: token}}, nil
}

func (h *Handler) unsubscribe(ctx context.Context, req Request) (Response, error) {
	queueID, err := requireParam(req, ParamQueueID)
	if err != nil {
		return Response{}, err
	}
	if err := h.Subscriptions.Unsubscribe(ctx, req.RequesterID, queueID, true); err != nil {
		return Response{}, err
	}
	return Response{}, nil
}

func (h *Handler) processNext(ctx context.Context, req Request) (Response, error) {
	queueID, err := requireParam(req, ParamQueueID)
	if err != nil {
		return Response{}, err
	}
	token, err := h.Consumer.ProcessNext(ctx, req.RequesterID, queueID)
	if err != nil {
		return Response{}, err
	}
	return Response{Values: ProcessResult{LastProcessedToken: token}}, nil
}

func (h *Handler) describeUser(ctx context.Context, req Request) (Response, error) {
	var owned *bool
	if raw := req.Param(ParamOwner); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Response{}, fmt.Errorf("%v must be a boolean: %w", ParamOwner, errInvalidParameter)
		}
		owned = &parsed
	}
	subs, err := h.Subscriptions.ListUserQueues(ctx, req.RequesterID, owned)
	if err != nil {
		return Response{}, err
	}
	return Response{Values: subs}, nil
}
