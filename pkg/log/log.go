package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

// Init 은 zap logger 를 초기화한다.
func Init(level, format, outputPath string) {
	var err error
	var logger *zap.Logger
	var zapConfig zap.Config

	// 설정값에 따라 로그 레벨을 지정한다
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	// 설정값에 따라 인코딩 형식을 지정한다
	encoding := "json"
	if format == "console" {
		encoding = "console"
	}

	// 개발 환경 설정
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		// 운영 환경 설정
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = logLevel
	zapConfig.Encoding = encoding
	zapConfig.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		// 파일 출력 경로가 지정되면 stdout 과 파일에 동시에 기록한다
		_ = os.MkdirAll(outputPath, os.ModePerm)
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, outputPath+"/app.log")
	}

	logger, err = zapConfig.Build()
	if err != nil {
		panic(err)
	}

	sugar = logger.Sugar()
}

// Info 는 info 레벨 로그를 기록한다.
func Info(msg string) {
	sugar.Info(msg)
}

// Infof 는 포맷 문자열로 info 레벨 로그를 기록한다.
func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow 는 key-value 쌍으로 구조화된 info 레벨 로그를 기록한다.
// 복잡한 컨텍스트 정보를 남길 때는 이 함수를 우선 사용한다.
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

// Warnf 는 포맷 문자열로 warn 레벨 로그를 기록한다.
func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

// Error 는 error 정보를 붙여 error 레벨 로그를 기록한다.
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

// Fatal 은 error 정보를 붙여 fatal 레벨 로그를 기록하고 프로세스를 종료한다.
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

// Sync 는 버퍼에 남아 있는 로그를 기록 장치로 내보낸다.
// 프로세스 종료 직전에 호출한다.
func Sync() {
	_ = sugar.Sync()
}
