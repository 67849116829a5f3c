package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/albesa-team/artguide-backend/pkg/e"
	"github.com/albesa-team/artguide-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

const (
	// ModeStandalone — пайплайн выполняется в процессе HTTP-сервера
	ModeStandalone = "standalone"
	// ModeDistributed — HTTP-сервер ставит запросы в очередь, обрабатывают воркеры
	ModeDistributed = "distributed"
)

type Config struct {
	Mode      string
	Http      *HTTPConfig
	Redis     *RedisCfg
	Qdrant    *QdrantCfg
	Embedder  *EmbedderCfg
	LLM       *LLMCfg
	Catalog   *CatalogCfg
	Telemetry *TelemetryCfg
	Queue     *QueueCfg
	Minio     *MinIOCfg
	Kafka     *KafkaCfg
	Pipeline  *PipelineCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisCfg struct {
	Addr           string
	Password       string
	User           string
	DB             int
	MaxRetries     int
	DialTimeout    time.Duration
	Timeout        time.Duration
	DescriptionTTL time.Duration // TTL кэша сгенерированных описаний
}

type QdrantCfg struct {
	Host           string
	Port           int
	ApiKey         string
	CollectionName string // имя коллекции с векторами каталога
	UseTLS         bool
	VectorSize     uint64
}

type EmbedderCfg struct {
	Endpoint   string // адрес CLIP-сервиса
	Timeout    time.Duration
	MaxRetries int
	VectorSize int
}

type LLMCfg struct {
	ApiKey  string // пустое значение — генерация отключена, используется шаблон
	Model   string
	Timeout time.Duration
}

type CatalogCfg struct {
	MetadataPath string
}

type TelemetryCfg struct {
	LogPath string
}

// QueueCfg — параметры протокола очереди распределённого режима.
type QueueCfg struct {
	RequestQueue   string
	ResponsePrefix string
	ResponseTTL    time.Duration // TTL записи в хранилище ответов
	PollTimeout    time.Duration // таймаут BLPOP воркера
	PollInterval   time.Duration // интервал опроса хранилища продюсером
	AwaitTimeout   time.Duration // сколько продюсер ждёт ответ
}

type MinIOCfg struct {
	Enabled           bool
	MinioEndpoint     string
	BucketName        string
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type KafkaCfg struct {
	Enabled           bool
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type PipelineCfg struct {
	TopK uint64 // ширина поиска k
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	// .env подхватывается только если присутствует
	_ = godotenv.Load()

	mode := getEnvOrDefault("APP_MODE", ModeStandalone)
	if mode != ModeStandalone && mode != ModeDistributed {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("invalid APP_MODE %q", mode))
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedder, err := loadEmbedderCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	queue, err := loadQueueCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	pipeline, err := loadPipelineCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Mode:      mode,
		Http:      http,
		Redis:     redis,
		Qdrant:    qdrant,
		Embedder:  embedder,
		LLM:       loadLLMCfg(),
		Catalog:   loadCatalogCfg(),
		Telemetry: loadTelemetryCfg(),
		Queue:     queue,
		Minio:     minio,
		Kafka:     kafka,
		Pipeline:  pipeline,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 10 * time.Second
		defaultWriteTimeout = 60 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr           = "localhost:6379"
		defaultDB             = 0
		defaultMaxRetries     = 3
		defaultDialTimeout    = 5 * time.Second
		defaultTimeout        = 3 * time.Second
		defaultDescriptionTTL = 24 * time.Hour
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REDIS_MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("REDIS_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DIAL_TIMEOUT")
		return nil, err
	}

	timeout, err := parseDurationEnv("REDIS_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_TIMEOUT")
		return nil, err
	}

	descriptionTTL, err := parseDurationEnv("DESCRIPTION_TTL", defaultDescriptionTTL)
	if err != nil {
		log.Errorf(err, "invalid DESCRIPTION_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:           getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:       getEnv("REDIS_PASSWORD"),
		User:           getEnv("REDIS_USER"),
		DB:             db,
		MaxRetries:     maxRetries,
		DialTimeout:    dialTimeout,
		Timeout:        timeout,
		DescriptionTTL: descriptionTTL,
	}, nil
}

func loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultHost       = "localhost"
		defaultGRPCPort   = "6334"
		defaultCollection = "artworks"
		defaultUseTLS     = false
		defaultVectorSize = "512"
	)

	port, err := strconv.Atoi(getEnvOrDefault("QDRANT_GRPC_PORT", defaultGRPCPort))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := strconv.ParseUint(getEnvOrDefault("VECTOR_SIZE", defaultVectorSize), 10, 64)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:           getEnvOrDefault("QDRANT_HOST", defaultHost),
		Port:           port,
		ApiKey:         getEnv("QDRANT__SERVICE__API_KEY"),
		CollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:         useTLS,
		VectorSize:     vectorSize,
	}, nil
}

func loadEmbedderCfg(log logger.Logger) (*EmbedderCfg, error) {
	const (
		defaultEndpoint   = "http://localhost:5000/embed"
		defaultTimeout    = 30 * time.Second
		defaultMaxRetries = 3
		defaultVectorSize = 512
	)

	timeout, err := parseDurationEnv("EMBEDDER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDER_TIMEOUT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("EMBEDDER_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDER_MAX_RETRIES")
		return nil, err
	}

	vectorSize, err := parseIntEnv("VECTOR_SIZE", defaultVectorSize)
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &EmbedderCfg{
		Endpoint:   getEnvOrDefault("EMBEDDER_ENDPOINT", defaultEndpoint),
		Timeout:    timeout,
		MaxRetries: maxRetries,
		VectorSize: vectorSize,
	}, nil
}

func loadLLMCfg() *LLMCfg {
	const (
		defaultModel   = "gpt-4o-mini"
		defaultTimeout = 60 * time.Second
	)

	timeout, err := parseDurationEnv("LLM_TIMEOUT", defaultTimeout)
	if err != nil {
		timeout = defaultTimeout
	}

	return &LLMCfg{
		ApiKey:  getEnv("OPENAI_API_KEY"),
		Model:   getEnvOrDefault("LLM_MODEL", defaultModel),
		Timeout: timeout,
	}
}

func loadCatalogCfg() *CatalogCfg {
	const defaultMetadataPath = "models/metadata.csv"

	return &CatalogCfg{
		MetadataPath: getEnvOrDefault("META_PATH", defaultMetadataPath),
	}
}

func loadTelemetryCfg() *TelemetryCfg {
	const defaultLogPath = "logs/telemetry.csv"

	return &TelemetryCfg{
		LogPath: getEnvOrDefault("TELEMETRY_PATH", defaultLogPath),
	}
}

func loadQueueCfg(log logger.Logger) (*QueueCfg, error) {
	const (
		defaultRequestQueue   = "artguide:requests"
		defaultResponsePrefix = "artguide:response:"
		defaultResponseTTL    = 60 * time.Second
		defaultPollTimeout    = 1 * time.Second
		defaultPollInterval   = 250 * time.Millisecond
		defaultAwaitTimeout   = 30 * time.Second
	)

	responseTTL, err := parseDurationEnv("RESPONSE_TTL", defaultResponseTTL)
	if err != nil {
		log.Errorf(err, "invalid RESPONSE_TTL")
		return nil, err
	}

	pollTimeout, err := parseDurationEnv("QUEUE_POLL_TIMEOUT", defaultPollTimeout)
	if err != nil {
		log.Errorf(err, "invalid QUEUE_POLL_TIMEOUT")
		return nil, err
	}

	pollInterval, err := parseDurationEnv("RESPONSE_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		log.Errorf(err, "invalid RESPONSE_POLL_INTERVAL")
		return nil, err
	}

	awaitTimeout, err := parseDurationEnv("AWAIT_TIMEOUT", defaultAwaitTimeout)
	if err != nil {
		log.Errorf(err, "invalid AWAIT_TIMEOUT")
		return nil, err
	}

	return &QueueCfg{
		RequestQueue:   getEnvOrDefault("REQUEST_QUEUE", defaultRequestQueue),
		ResponsePrefix: getEnvOrDefault("RESPONSE_PREFIX", defaultResponsePrefix),
		ResponseTTL:    responseTTL,
		PollTimeout:    pollTimeout,
		PollInterval:   pollInterval,
		AwaitTimeout:   awaitTimeout,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const defaultUseSSL = false

	// Архивация загруженных фото включается только при заданном endpoint
	endpoint := getEnv("MINIO_ENDPOINT")
	if endpoint == "" {
		return &MinIOCfg{Enabled: false}, nil
	}

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	bucket := getEnv("BUCKET_NAME")
	if bucket == "" {
		return nil, fmt.Errorf("BUCKET_NAME is required when MINIO_ENDPOINT is set")
	}

	return &MinIOCfg{
		Enabled:           true,
		MinioEndpoint:     endpoint,
		BucketName:        bucket,
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "artguide.recognitions"
	)

	// Публикация событий распознавания включается только при заданных брокерах
	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return &KafkaCfg{Enabled: false}, nil
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Enabled:           true,
		Brokers:           strings.Split(brokerStr, ","),
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadPipelineCfg() (*PipelineCfg, error) {
	const defaultTopK = 5

	topK, err := parseIntEnv("SEARCH_TOP_K", defaultTopK)
	if err != nil {
		return nil, e.Wrap("SEARCH_TOP_K", err)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("SEARCH_TOP_K must be positive")
	}

	return &PipelineCfg{TopK: uint64(topK)}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
