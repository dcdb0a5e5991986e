package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar para que todos los logs usen las mismas keys.

func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Email espera el valor ya enmascarado (util.MaskEmail).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

func Component(v string) zap.Field {
	return zap.String("component", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}
