package log

import "go.uber.org/zap"

// L is the process-wide logger. Nop until Init is called so packages can log
// unconditionally.
var L = zap.NewNop()

func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	L = l
	return l, nil
}

func Infof(format string, args ...any)  { L.Sugar().Infof(format, args...) }
func Errorf(format string, args ...any) { L.Sugar().Errorf(format, args...) }
