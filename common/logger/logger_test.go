package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
	"github.com/resensebox/Mindful-Libraries-sub000/core/config"
)

var _ = Describe("TraceHandler", func() {
	It("adds log fields from the context", func() {
		var buf bytes.Buffer
		log := slog.New(logger.NewHandler(config.Config{Env: "production"}, &buf))

		ctx := logger.WithLogFields(context.Background(), logger.LogFields{
			SessionID: logger.Ptr("sess-1"),
			Component: "mindful.test",
		})
		ctx = logger.WithLogFields(ctx, logger.LogFields{SubmissionID: logger.Ptr(int64(42))})
		log.InfoContext(ctx, "hello")

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record["msg"]).To(Equal("hello"))
		Expect(record["session_id"]).To(Equal("sess-1"))
		Expect(record["submission_id"]).To(BeEquivalentTo(42))
		Expect(record["component"]).To(Equal("mindful.test"))
		Expect(record).NotTo(HaveKey("trace_id"))
	})

	It("logs debug only in development", func() {
		var buf bytes.Buffer
		slog.New(logger.NewHandler(config.Config{Env: "production"}, &buf)).Debug("hidden")
		Expect(buf.Len()).To(Equal(0))

		slog.New(logger.NewHandler(config.Config{Env: "development"}, &buf)).Debug("shown")
		Expect(buf.String()).To(ContainSubstring("shown"))
	})
})

var _ = Describe("LogFields", func() {
	It("keeps earlier values that later calls leave empty", func() {
		ctx := logger.WithLogFields(context.Background(), logger.LogFields{Route: logger.Ptr("/recommend")})
		ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "x"})

		fields := logger.GetLogFields(ctx)
		Expect(*fields.Route).To(Equal("/recommend"))
		Expect(fields.Component).To(Equal("x"))
	})

	It("truncates long strings", func() {
		Expect(logger.Truncate("abcdef", 3)).To(Equal("abc..."))
		Expect(logger.Truncate("abc", 3)).To(Equal("abc"))
	})
})
