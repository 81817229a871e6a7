package middleware

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/architeacher/erp-shell/pkg/logger"
	"github.com/architeacher/erp-shell/pkg/metrics"
	"github.com/architeacher/erp-shell/services/svc-web-shell/internal/config"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultCompressibleTypes covers what the shell serves: pages, assets and
// JSON.
var DefaultCompressibleTypes = []string{
	"text/html",
	"text/css",
	"text/javascript",
	"application/javascript",
	"application/json",
	"application/yaml",
	"image/svg+xml",
	"text/plain",
}

// serverPreferenceOrder breaks ties between equal client quality values.
var serverPreferenceOrder = []string{encodingBrotli, encodingGzip, encodingDeflate}

const (
	encodingBrotli   = "br"
	encodingGzip     = "gzip"
	encodingDeflate  = "deflate"
	encodingIdentity = "identity"

	compressionAlgorithmKey  = "compression.algorithm"
	compressionSkipReasonKey = "compression.skip_reason"

	httpCompressionTotal           = "http_compression_total"
	httpCompressionOriginalBytes   = "http_compression_original_bytes"
	httpCompressionCompressedBytes = "http_compression_compressed_bytes"
	httpCompressionRatio           = "http_compression_ratio"
	httpCompressionSkippedTotal    = "http_compression_skipped_total"

	skipReasonBelowMinSize    = "below_min_size"
	skipReasonNonCompressible = "non_compressible_type"
	skipReasonNoEncoding      = "no_accept_encoding"
	skipReasonSkippedPath     = "skipped_path"
	skipReasonUpgrade         = "connection_upgrade"
	skipReasonNoBody          = "no_body"
)

type (
	acceptEncoding struct {
		encoding string
		quality  float64
	}

	// encoderPools keeps one pool per algorithm and level.
	encoderPools struct {
		gzip    [10]sync.Pool
		deflate [10]sync.Pool
		brotli  [12]sync.Pool
	}

	compressResponseWriter struct {
		http.ResponseWriter

		ctx           context.Context
		log           logger.Logger
		metricsClient metrics.Client

		encoding     string
		level        int
		minSize      int
		contentTypes []string

		encoder       io.WriteCloser
		release       func()
		buf           []byte
		pendingStatus int
		headerWritten bool
		passthrough   bool
		skipReason    string
		originalSize  int
		counter       *countingWriter
	}

	countingWriter struct {
		w io.Writer
		n int64
	}
)

var pools encoderPools

// Compression negotiates br, gzip or deflate from Accept-Encoding. Responses
// below MinSize, of non-listed content types, bodiless statuses and
// websocket upgrades pass through untouched.
func Compression(cfg config.Compression, log logger.Logger, metricsClient metrics.Client) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	contentTypes := cfg.ContentTypes
	if len(contentTypes) == 0 {
		contentTypes = DefaultCompressibleTypes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if isWebSocketUpgrade(r) {
				recordCompressionSkipped(ctx, metricsClient, skipReasonUpgrade)
				next.ServeHTTP(w, r)

				return
			}

			if shouldSkipPath(r.URL.Path, cfg.SkipPaths) {
				recordCompressionSkipped(ctx, metricsClient, skipReasonSkippedPath)
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Add("Vary", "Accept-Encoding")

			acceptHeader := r.Header.Get("Accept-Encoding")
			if acceptHeader == "" {
				recordCompressionSkipped(ctx, metricsClient, skipReasonNoEncoding)
				next.ServeHTTP(w, r)

				return
			}

			encodings := parseAcceptEncoding(acceptHeader)

			if rejectsIdentity(encodings) && !hasValidEncoding(encodings) {
				log.Warn().
					Str("accept_encoding", acceptHeader).
					Msg("client rejected all encodings, returning 406")

				WriteJSONError(w, http.StatusNotAcceptable, "NOT_ACCEPTABLE", "no acceptable encoding available")

				return
			}

			encoding := selectEncoding(encodings)
			if encoding == "" || encoding == encodingIdentity {
				recordCompressionSkipped(ctx, metricsClient, skipReasonNoEncoding)
				next.ServeHTTP(w, r)

				return
			}

			cw := &compressResponseWriter{
				ResponseWriter: w,
				ctx:            ctx,
				log:            log,
				metricsClient:  metricsClient,
				encoding:       encoding,
				level:          cfg.Level,
				minSize:        cfg.MinSize,
				contentTypes:   contentTypes,
				pendingStatus:  http.StatusOK,
			}

			defer func() { _ = cw.Close() }()

			next.ServeHTTP(cw, r)
		})
	}
}

func (w *compressResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten || w.passthrough {
		return
	}

	if statusCode < http.StatusOK {
		w.ResponseWriter.WriteHeader(statusCode)

		return
	}

	w.pendingStatus = statusCode
	contentType := w.Header().Get(contentTypeHeader)

	switch {
	case statusCode == http.StatusNoContent, statusCode == http.StatusNotModified:
		w.startPassthrough(skipReasonNoBody)
	case contentType != "" && !w.isCompressible(contentType):
		w.startPassthrough(skipReasonNonCompressible)
	case w.Header().Get("Content-Encoding") != "":
		w.startPassthrough(skipReasonNonCompressible)
	}
}

func (w *compressResponseWriter) Write(b []byte) (int, error) {
	w.originalSize += len(b)

	if w.passthrough {
		return w.ResponseWriter.Write(b)
	}

	if w.encoder != nil {
		return w.encoder.Write(b)
	}

	if w.Header().Get(contentTypeHeader) == "" {
		w.Header().Set(contentTypeHeader, http.DetectContentType(b))
	}

	if !w.isCompressible(w.Header().Get(contentTypeHeader)) {
		w.startPassthrough(skipReasonNonCompressible)

		return w.ResponseWriter.Write(b)
	}

	w.buf = append(w.buf, b...)
	if len(w.buf) >= w.minSize {
		if err := w.startEncoder(); err != nil {
			return 0, err
		}
	}

	return len(b), nil
}

func (w *compressResponseWriter) startPassthrough(reason string) {
	w.passthrough = true
	w.skipReason = reason
	w.writeHeader()

	if len(w.buf) > 0 {
		_, _ = w.ResponseWriter.Write(w.buf)
		w.buf = nil
	}
}

func (w *compressResponseWriter) startEncoder() error {
	w.Header().Set("Content-Encoding", w.encoding)
	w.Header().Del("Content-Length")

	w.counter = &countingWriter{w: w.ResponseWriter}
	w.encoder, w.release = pools.acquire(w.encoding, w.level, w.counter)

	w.writeHeader()

	buffered := w.buf
	w.buf = nil

	_, err := w.encoder.Write(buffered)

	return err
}

func (w *compressResponseWriter) writeHeader() {
	if w.headerWritten {
		return
	}

	w.headerWritten = true
	w.ResponseWriter.WriteHeader(w.pendingStatus)
}

func (w *compressResponseWriter) isCompressible(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	return slices.ContainsFunc(w.contentTypes, func(allowed string) bool {
		return strings.EqualFold(allowed, mediaType)
	})
}

func (w *compressResponseWriter) Flush() {
	if !w.passthrough && w.encoder == nil {
		if err := w.startEncoder(); err != nil {
			return
		}
	}

	if flusher, ok := w.encoder.(interface{ Flush() error }); ok {
		_ = flusher.Flush()
	}

	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

func (w *compressResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Close flushes a buffered body that never reached MinSize and returns the
// encoder to its pool.
func (w *compressResponseWriter) Close() error {
	if w.encoder == nil {
		if !w.passthrough {
			reason := skipReasonBelowMinSize
			if w.originalSize == 0 {
				reason = skipReasonNoBody
			}

			w.startPassthrough(reason)
		}

		recordCompressionSkipped(w.ctx, w.metricsClient, w.skipReason)

		return nil
	}

	err := w.encoder.Close()
	w.release()

	recordCompressionMetrics(w.ctx, w.metricsClient, w.encoding, int64(w.originalSize), w.counter.n)

	w.log.Debug().
		Str("compression_algorithm", w.encoding).
		Int("original_size", w.originalSize).
		Int64("compressed_size", w.counter.n).
		Msg("response compressed")

	return err
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)

	return n, err
}

func (p *encoderPools) acquire(encoding string, level int, dst io.Writer) (io.WriteCloser, func()) {
	switch encoding {
	case encodingGzip:
		pool := &p.gzip[clampLevel(level, gzip.BestSpeed, gzip.BestCompression)]
		gw, ok := pool.Get().(*gzip.Writer)
		if !ok {
			gw, _ = gzip.NewWriterLevel(dst, clampLevel(level, gzip.BestSpeed, gzip.BestCompression))
		} else {
			gw.Reset(dst)
		}

		return gw, func() { pool.Put(gw) }
	case encodingDeflate:
		pool := &p.deflate[clampLevel(level, flate.BestSpeed, flate.BestCompression)]
		fw, ok := pool.Get().(*flate.Writer)
		if !ok {
			fw, _ = flate.NewWriter(dst, clampLevel(level, flate.BestSpeed, flate.BestCompression))
		} else {
			fw.Reset(dst)
		}

		return fw, func() { pool.Put(fw) }
	default:
		pool := &p.brotli[clampLevel(level, brotli.BestSpeed, brotli.BestCompression)]
		bw, ok := pool.Get().(*brotli.Writer)
		if !ok {
			bw = brotli.NewWriterLevel(dst, clampLevel(level, brotli.BestSpeed, brotli.BestCompression))
		} else {
			bw.Reset(dst)
		}

		return bw, func() { pool.Put(bw) }
	}
}

func clampLevel(level, lowest, highest int) int {
	return max(lowest, min(level, highest))
}

func recordCompressionSkipped(ctx context.Context, metricsClient metrics.Client, reason string) {
	if metricsClient == nil {
		return
	}

	metricsClient.Inc(ctx, httpCompressionSkippedTotal, 1, attribute.String(compressionSkipReasonKey, reason))
}

func recordCompressionMetrics(ctx context.Context, metricsClient metrics.Client, algorithm string, originalSize, compressedSize int64) {
	if metricsClient == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(compressionAlgorithmKey, algorithm),
	}

	metricsClient.Inc(ctx, httpCompressionTotal, 1, attrs...)
	metricsClient.Inc(ctx, httpCompressionOriginalBytes, originalSize, attrs...)
	metricsClient.Inc(ctx, httpCompressionCompressedBytes, compressedSize, attrs...)

	if originalSize > 0 {
		metricsClient.Inc(ctx, httpCompressionRatio, float64(compressedSize)/float64(originalSize), attrs...)
	}
}

func parseAcceptEncoding(header string) []acceptEncoding {
	var encodings []acceptEncoding

	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, params, _ := strings.Cut(part, ";")
		enc := acceptEncoding{
			encoding: strings.ToLower(strings.TrimSpace(name)),
			quality:  1.0,
		}

		for param := range strings.SplitSeq(params, ";") {
			value, found := strings.CutPrefix(strings.TrimSpace(param), "q=")
			if !found {
				continue
			}

			if q, err := strconv.ParseFloat(value, 64); err == nil {
				enc.quality = q
			}
		}

		encodings = append(encodings, enc)
	}

	return encodings
}

func rejectsIdentity(encodings []acceptEncoding) bool {
	return slices.ContainsFunc(encodings, func(enc acceptEncoding) bool {
		return (enc.encoding == encodingIdentity || enc.encoding == "*") && enc.quality == 0
	})
}

func hasValidEncoding(encodings []acceptEncoding) bool {
	return slices.ContainsFunc(encodings, func(enc acceptEncoding) bool {
		if enc.quality <= 0 {
			return false
		}

		return enc.encoding == "*" || slices.Contains(serverPreferenceOrder, enc.encoding)
	})
}

// selectEncoding picks the highest client quality, then server preference.
func selectEncoding(encodings []acceptEncoding) string {
	best := ""
	bestQuality := 0.0
	bestPriority := len(serverPreferenceOrder)

	for _, enc := range encodings {
		if enc.quality <= 0 {
			continue
		}

		if enc.encoding == "*" {
			if enc.quality > bestQuality {
				best, bestQuality, bestPriority = serverPreferenceOrder[0], enc.quality, 0
			}

			continue
		}

		priority := slices.Index(serverPreferenceOrder, enc.encoding)
		if priority < 0 {
			continue
		}

		if enc.quality > bestQuality || (enc.quality == bestQuality && priority < bestPriority) {
			best, bestQuality, bestPriority = enc.encoding, enc.quality, priority
		}
	}

	return best
}

func shouldSkipPath(path string, skipPaths []string) bool {
	return slices.ContainsFunc(skipPaths, func(skipPath string) bool {
		return skipPath != "" && strings.HasPrefix(path, skipPath)
	})
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}
