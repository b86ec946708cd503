package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shortreel/api"
	"shortreel/config"
	"shortreel/fonts"
	"shortreel/processor"
	"shortreel/publish"
	"shortreel/queue"
	"shortreel/storage"
	"shortreel/tts"
	"shortreel/video"
)

func main() {
	kafkaMode := flag.Bool("kafka", false, "Run in Kafka consumer mode (render jobs from the jobs topic)")
	manifestPath := flag.String("manifest", "", "Render a single YAML/JSON manifest and exit")
	port := flag.String("port", "", "API server port (overrides PORT)")
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	log.Println("🎬 Slideshow Video Service - Starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := buildDependencies(ctx, cfg)
	defer deps.close()

	if *manifestPath != "" {
		runManifest(ctx, deps.proc, *manifestPath)
		return
	}

	if *kafkaMode {
		runConsumer(ctx, cfg, deps)
		return
	}

	runAPI(ctx, cfg, deps)
}

type dependencies struct {
	proc     *processor.Processor
	s3       *storage.S3Publisher
	janitor  *storage.Janitor
	cache    *tts.RedisCache
	producer *queue.EventProducer
}

func (d *dependencies) close() {
	if d.janitor != nil {
		d.janitor.Stop()
	}
	if d.producer != nil {
		d.producer.Close()
	}
	if d.cache != nil {
		d.cache.Close()
	}
}

// startJanitor purges expired renders in every long-running mode.
func (d *dependencies) startJanitor(cfg config.Config) {
	d.janitor = storage.NewJanitor(cfg.OutputRoot(), cfg.UploadsRoot(), cfg.OutputRetention)
	if d.s3 != nil {
		d.janitor.Remote = d.s3
	}
	if err := d.janitor.Start(config.JanitorSchedule); err != nil {
		log.Printf("⚠️ Janitor not started: %v", err)
	}
}

func buildDependencies(ctx context.Context, cfg config.Config) *dependencies {
	d := &dependencies{}

	if cfg.RedisAddr != "" {
		cache, err := tts.NewRedisCache(tts.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTSCacheTTL,
		})
		if err != nil {
			log.Printf("⚠️ TTS cache disabled: %v", err)
		} else {
			d.cache = cache
			log.Printf("✅ TTS cache connected (%s)", cfg.RedisAddr)
		}
	}

	var synthCache tts.Cache
	if d.cache != nil {
		synthCache = d.cache
	}

	opts := processor.Options{
		UploadsDir:    cfg.UploadsRoot(),
		OutputDir:     cfg.OutputRoot(),
		MaxConcurrent: cfg.MaxConcurrentRenders,
		Fonts:         fonts.NewLibrary(cfg.FontDir, config.FontFiles),
		Synth:         tts.NewClient(synthCache),
		Encoder:       video.NewFFmpegEncoder(cfg.VideoPreset),
	}

	if cfg.S3Bucket != "" {
		pub, err := storage.NewS3Publisher(ctx, storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Printf("⚠️ S3 publishing disabled: %v", err)
		} else {
			d.s3 = pub
			opts.Publisher = pub
			log.Printf("✅ Publishing renders to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
		}
	}

	if cfg.YouTubeServiceAccountFile != "" {
		up, err := publish.NewYouTubeUploader(ctx, cfg.YouTubeServiceAccountFile)
		if err != nil {
			log.Printf("⚠️ YouTube uploader not initialized: %v", err)
		} else {
			opts.Uploader = up
			log.Println("✅ YouTube client initialized")
		}
	}

	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaEventsTopic != "" {
		producer, err := queue.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		if err != nil {
			log.Printf("⚠️ Render events disabled: %v", err)
		} else {
			d.producer = producer
			opts.Notifier = producer
			log.Printf("✅ Publishing render events to %s", cfg.KafkaEventsTopic)
		}
	}

	d.proc = processor.New(opts)
	return d
}

func runManifest(ctx context.Context, proc *processor.Processor, path string) {
	log.Printf("📄 Rendering manifest %s", path)

	m, err := processor.LoadManifest(path)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	res, err := proc.Render(ctx, m.Input(ctx, processor.ManifestDir(path)))
	if err != nil {
		log.Fatalf("❌ Render failed: %v", err)
	}
	log.Printf("✅ Video saved: %s (%.2fs)", res.Path, res.Duration)
	if res.RemoteURL != "" {
		log.Printf("🔗 %s", res.RemoteURL)
	}
}

func runConsumer(ctx context.Context, cfg config.Config, deps *dependencies) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("❌ KAFKA_BOOTSTRAP_SERVERS is required in Kafka mode")
	}

	log.Println("📨 Running in KAFKA consumer mode")
	log.Printf("🔗 Kafka Brokers: %v", cfg.KafkaBrokers)
	log.Printf("📋 Topic: %s", cfg.KafkaJobsTopic)
	log.Printf("👥 Consumer Group: %s", cfg.KafkaGroupID)

	deps.startJanitor(cfg)

	consumer, err := queue.NewRenderJobConsumer(cfg.KafkaBrokers, cfg.KafkaJobsTopic, cfg.KafkaGroupID, deps.proc, cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Kafka consumer failed: %v", err)
	}
	defer consumer.Close()

	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("❌ Kafka consumer failed: %v", err)
	}

	<-ctx.Done()
	log.Println("🛑 Shutting down consumer...")
}

func runAPI(ctx context.Context, cfg config.Config, deps *dependencies) {
	deps.startJanitor(cfg)

	controller := &api.VideoController{
		Renderer:  deps.proc,
		OutputDir: cfg.OutputRoot(),
		BaseURL:   cfg.PublicBaseURL,
	}
	if deps.s3 != nil {
		controller.Remote = deps.s3
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.NewRouter(controller),
	}

	log.Println("🌐 Running in API mode")
	log.Printf("🚀 API Server listening on %s", srv.Addr)
	log.Println("📌 Endpoints:")
	log.Println("   POST /generate-video  - Render a slideshow from a multipart form")
	log.Println("   GET  /get-video       - Download a finished render")
	log.Println("   GET  /api/health      - Health check")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Shutdown error: %v", err)
	}
}
