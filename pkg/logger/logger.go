package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger de la aplicación.
type Config struct {
	App   string    // nombre del servicio; va como campo fijo en cada línea
	Env   string    // development -> consola legible; cualquier otro -> JSON
	Level string    // trace, debug, info, warn, error (inválido -> info)
	Out   io.Writer // destino; nil = os.Stdout
}

// Logger logger estructurado del servicio de stock. Los casos de uso escriben
// por el logger global de zerolog, que New deja apuntando a esta misma salida.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger. En development usa salida legible; en el resto JSON.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Str("app", cfg.App).Logger()

	// Redirigir el logger global para los paquetes que loguean vía rs/zerolog/log
	log.Logger = zl

	return &Logger{zl: zl}
}

// Info, Warn, Error, Fatal delegados a zerolog.
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }
