package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/covid19india/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger forwards gorm's statement traces to the project logger.
// Failed statements are traced at debug level only: callers decide how a
// storage failure is reported.
type gormLogger struct {
	log       logger.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
}

var _ gormlogger.Interface = (*gormLogger)(nil)

func newGormLogger(l logger.Logger, slowQuery time.Duration) *gormLogger {
	return &gormLogger{log: l, level: gormlogger.Warn, slowQuery: slowQuery}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error(ctx, fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.log.Debug(ctx, "statement failed",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
	case g.slowQuery > 0 && elapsed > g.slowQuery && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn(ctx, "slow statement",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("elapsed", elapsed),
			logger.Duration("threshold", g.slowQuery))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug(ctx, "statement",
			logger.String("sql", sql),
			logger.Int64("rows", rows),
			logger.Duration("elapsed", elapsed))
	}
}
