package xlog

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func TestFxXLoggerAllCases(t *testing.T) {
	testcases := []struct {
		name  string
		event fxevent.Event
		isErr bool
	}{
		{"onStartExecuting", &fxevent.OnStartExecuting{FunctionName: "f1", CallerName: "c1"}, false},
		{"onStartExecuted_err", &fxevent.OnStartExecuted{FunctionName: "f2", CallerName: "c2", Err: errors.New("fx error 1")}, true},
		{"onStartExecuted_succ", &fxevent.OnStartExecuted{FunctionName: "f3", CallerName: "c3", Runtime: 12}, false},
		{"onStopExecuting", &fxevent.OnStopExecuting{FunctionName: "f4", CallerName: "c4"}, false},
		{"onStopExecuted_err", &fxevent.OnStopExecuted{FunctionName: "f5", CallerName: "c5", Err: errors.New("fx error 2")}, true},
		{"supplied_err", &fxevent.Supplied{TypeName: "t1", Err: errors.New("fx error 3")}, true},
		{"supplied", &fxevent.Supplied{TypeName: "t2"}, false},
		{"provided", &fxevent.Provided{ConstructorName: "ctor", OutputTypeNames: []string{"a", "b"}}, false},
		{"invoking", &fxevent.Invoking{FunctionName: "f6"}, false},
		{"invoked_err", &fxevent.Invoked{FunctionName: "f7", Err: errors.New("fx error 4")}, true},
		{"stopping", &fxevent.Stopping{Signal: os.Interrupt}, false},
		{"rollingBack", &fxevent.RollingBack{StartErr: errors.New("fx error 5")}, true},
		{"started", &fxevent.Started{}, false},
		{"loggerInitialized", &fxevent.LoggerInitialized{ConstructorName: "ctor"}, false},
	}

	buf := &bytes.Buffer{}
	logger := NewFxXLogger(NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		withXLoggerWriteSyncer(zapcore.AddSync(buf)),
	))
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			buf.Reset()
			logger.LogEvent(tc.event)
			require.NotEmpty(tt, buf.String())
			require.Contains(tt, buf.String(), `"component":"Fx"`)
			if tc.isErr {
				require.Contains(tt, buf.String(), `"lvl":"ERROR"`)
			}
		})
	}

	var nilLogger *FxXLogger
	nilLogger.LogEvent(&fxevent.Started{})
}
