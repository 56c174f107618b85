package console

import (
	"fmt"
	"io"
	"sync"

	bCtx "github.com/x-xyz/salebot/base/ctx"
	"github.com/x-xyz/salebot/base/log"
	"github.com/x-xyz/salebot/domain"
)

type publisher struct {
	// mu serializes writes and the sequence, publishes run on several workers
	mu  sync.Mutex
	out io.Writer
	seq uint64
}

// NewPublisher writes announcements to out instead of posting them, used for dry runs
func NewPublisher(out io.Writer) domain.Publisher {
	return &publisher{out: out}
}

func (p *publisher) Publish(ctx bCtx.Ctx, text string) (*domain.Ack, error) {
	id, err := p.write(text)
	if err != nil {
		ctx.WithField("err", err).Error("write announcement failed")
		return nil, domain.NewTransientError(err)
	}
	if runId := bCtx.Value(ctx, bCtx.KeyRunId); runId != nil {
		id = fmt.Sprintf("%v-%s", runId, id)
	}
	ctx.WithFields(log.Fields{"id": id, "text": text}).Info("dry run announcement")
	return &domain.Ack{Id: id, Text: text}, nil
}

func (p *publisher) write(text string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(p.out, text); err != nil {
		return "", err
	}
	p.seq++
	return fmt.Sprintf("dry-run-%d", p.seq), nil
}
