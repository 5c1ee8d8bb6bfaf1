package utils

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *ServiceLogger

type ServiceLogger struct {
	*zap.Logger
	esClient  *elasticsearch.Client
	indexName string
}

func InitLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}

	Logger = &ServiceLogger{Logger: zapLogger}
}

// InitElasticLogger tees log output to stdout and an Elasticsearch
// index. The index name is taken from the "index" query parameter of
// the elastic URL.
func InitElasticLogger(elasticUrl, serviceName string) {
	u, err := url.Parse(elasticUrl)
	if err != nil {
		panic(err)
	}

	indexName := u.Query().Get("index")
	password, _ := u.User.Password()
	esCfg := elasticsearch.Config{
		Addresses: []string{u.Scheme + "://" + u.Host},
		Username:  u.User.Username(),
		Password:  password,
	}

	esClient, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		panic(err)
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(config.EncoderConfig)

	esWriter := &ElasticWriter{client: esClient, indexName: indexName}
	consoleCore := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), config.Level)
	elasticCore := zapcore.NewCore(encoder, zapcore.AddSync(esWriter), config.Level)

	zapLogger := zap.New(zapcore.NewTee(consoleCore, elasticCore))
	zapLogger = zapLogger.With(zap.String("service", serviceName))
	Logger = &ServiceLogger{Logger: zapLogger, esClient: esClient, indexName: indexName}
}

func (l *ServiceLogger) String(key string, value string) zap.Field {
	return zap.String(key, value)
}

// ElasticWriter implements zapcore.WriteSyncer
type ElasticWriter struct {
	client    *elasticsearch.Client
	indexName string
}

func (ew *ElasticWriter) Write(p []byte) (n int, err error) {
	_, err = ew.client.Index(
		ew.indexName,
		strings.NewReader(string(p)),
		ew.client.Index.WithContext(context.Background()),
		ew.client.Index.WithDocumentID(strconv.FormatInt(time.Now().UnixNano(), 10)),
	)
	if err != nil {
		return 0, err
	}

	return len(p), nil
}

func (ew *ElasticWriter) Sync() error {
	return nil
}
