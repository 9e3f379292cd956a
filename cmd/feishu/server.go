package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"

	"github.com/funkfeishu/feishu/core"
	"github.com/funkfeishu/feishu/feishu"
)

const (
	headerRequestID = "X-Request-Id"
	maxEventBody    = 1 << 20
)

type relay struct {
	client            *feishu.Client
	logger            *slog.Logger
	encryptKey        string
	verificationToken string
}

type sendMessageRequest struct {
	To            string          `json:"to"`
	MsgType       string          `json:"msg_type"`
	Content       json.RawMessage `json:"content"`
	ReceiveIDType string          `json:"receive_id_type"`
	UserIDType    string          `json:"user_id_type"`
	UUID          string          `json:"uuid"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

func registerRuntimeCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func serve(ctx context.Context, a *app, gatherer prometheus.Gatherer) error {
	r := &relay{
		client:            a.client,
		logger:            a.logger,
		encryptKey:        a.cfg.EncryptKey,
		verificationToken: a.cfg.VerificationToken,
	}
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           r.routes(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("relay listening", slog.String("addr", a.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (rl *relay) routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(rl.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", rl.sendMessage)
		r.Get("/groups/search", rl.searchGroup)
		r.Get("/users/id", rl.getUserID)
		r.Post("/events", rl.handleEvent)
	})
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

func (rl *relay) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		rl.logger.InfoContext(r.Context(), "http request",
			slog.String("request_id", w.Header().Get(headerRequestID)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

func (rl *relay) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if req.To == "" || len(req.Content) == 0 || string(req.Content) == "null" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to and content are required"})
		return
	}

	opts := []feishu.SendOption{feishu.WithUUID(req.UUID)}
	if req.ReceiveIDType != "" {
		opts = append(opts, feishu.WithReceiveIDType(feishu.ReceiveIDType(req.ReceiveIDType)))
	}
	if req.UserIDType != "" {
		opts = append(opts, feishu.WithUserIDType(feishu.UserIDType(req.UserIDType)))
	}

	// 字符串形式的 content 按字符串交给 Send，由其判断是否为 JSON 文本
	var content any = req.Content
	var text string
	if err := json.Unmarshal(req.Content, &text); err == nil {
		content = text
	}

	msg, err := rl.client.Send(r.Context(), req.To, feishu.MessageType(req.MsgType), content, opts...)
	if err != nil {
		rl.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (rl *relay) searchGroup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	chatID, err := rl.client.Search(r.Context(), query, feishu.UserIDType(r.URL.Query().Get("user_id_type")))
	if err != nil {
		rl.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"chat_id": chatID})
}

func (rl *relay) getUserID(w http.ResponseWriter, r *http.Request) {
	identifier := r.URL.Query().Get("identifier")
	if identifier == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "identifier is required"})
		return
	}

	userID, err := rl.client.GetID(r.Context(), identifier, feishu.UserIDType(r.URL.Query().Get("user_id_type")))
	if err != nil {
		rl.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID})
}

// handleEvent 事件订阅回调：校验签名、解密，并响应 url_verification
func (rl *relay) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read body failed"})
		return
	}

	// 配置了 Encrypt Key 时，请求必须带有效签名或为加密体（能解密即持有密钥）
	if rl.encryptKey != "" {
		if r.Header.Get(feishu.HeaderSignature) != "" {
			if !feishu.VerifyEventSignature(r.Header, rl.encryptKey, body) {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
				return
			}
		} else if gjson.GetBytes(body, "encrypt").String() == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unsigned plaintext event"})
			return
		}
	}

	cb, err := feishu.ParseEventCallback(body, rl.encryptKey)
	if err != nil {
		rl.logger.WarnContext(r.Context(), "parse event failed", slog.Any("error", err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event"})
		return
	}
	if rl.verificationToken != "" && cb.VerificationToken() != rl.verificationToken {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid verification token"})
		return
	}

	if cb.IsURLVerification() {
		writeJSON(w, http.StatusOK, map[string]string{"challenge": cb.Challenge})
		return
	}

	attrs := []any{slog.String("event_type", cb.EventType())}
	if cb.Header != nil {
		attrs = append(attrs, slog.String("event_id", cb.Header.EventID))
	}
	rl.logger.InfoContext(r.Context(), "event received", attrs...)
	writeJSON(w, http.StatusOK, struct{}{})
}

func (rl *relay) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}

	if _, ok := errors.AsType[*core.ValidationError](err); ok {
		status = http.StatusBadRequest
	} else if core.IsNotFound(err) {
		status = http.StatusNotFound
	} else if core.IsRateLimited(err) {
		status = http.StatusTooManyRequests
		resp.Code = core.ErrCodeFreqLimit
	} else if apiErr, ok := errors.AsType[*core.APIError](err); ok {
		status = http.StatusBadGateway
		resp.Code = apiErr.Code
	} else if authErr, ok := errors.AsType[*core.AuthError](err); ok {
		status = http.StatusBadGateway
		resp.Code = authErr.Code
	} else if _, ok := errors.AsType[*core.TransportError](err); ok {
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		rl.logger.ErrorContext(r.Context(), "request failed", slog.Any("error", err))
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
