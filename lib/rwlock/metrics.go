package rwlock

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/hephbuild/rwsched/lib/rwlock"

var tracer = otel.Tracer(instrumentationName)

type instruments struct {
	grants   metric.Int64Counter
	timeouts metric.Int64Counter
	cancels  metric.Int64Counter
	queued   metric.Int64UpDownCounter
}

var getInstruments = sync.OnceValue(func() instruments {
	meter := otel.Meter(instrumentationName)

	var inst instruments
	var err error

	inst.grants, err = meter.Int64Counter("rwlock.grants",
		metric.WithDescription("Number of granted lock acquisitions"),
	)
	if err != nil {
		otel.Handle(err)
	}

	inst.timeouts, err = meter.Int64Counter("rwlock.timeouts",
		metric.WithDescription("Number of lock acquisitions that timed out before being granted"),
	)
	if err != nil {
		otel.Handle(err)
	}

	inst.cancels, err = meter.Int64Counter("rwlock.cancels",
		metric.WithDescription("Number of queued lock acquisitions cancelled by their caller"),
	)
	if err != nil {
		otel.Handle(err)
	}

	inst.queued, err = meter.Int64UpDownCounter("rwlock.queued",
		metric.WithDescription("Number of lock acquisitions waiting in a queue"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return inst
})

var (
	readAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("kind", KindRead.String())))
	writeAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("kind", KindWrite.String())))
)

func kindAttrs(kind Kind) metric.MeasurementOption {
	if kind == KindWrite {
		return writeAttrs
	}

	return readAttrs
}

func recordGrant(kind Kind, immediate bool) {
	inst := getInstruments()
	if inst.grants == nil {
		return
	}

	inst.grants.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.Bool("immediate", immediate),
	))
}

func recordTimeout(kind Kind) {
	inst := getInstruments()
	if inst.timeouts == nil {
		return
	}

	inst.timeouts.Add(context.Background(), 1, kindAttrs(kind))
}

func recordCancel(kind Kind) {
	inst := getInstruments()
	if inst.cancels == nil {
		return
	}

	inst.cancels.Add(context.Background(), 1, kindAttrs(kind))
}

func recordQueued(kind Kind, delta int64) {
	inst := getInstruments()
	if inst.queued == nil {
		return
	}

	inst.queued.Add(context.Background(), delta, kindAttrs(kind))
}
