package s3

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"seedgen/sink"
)

type S3Config struct {
	Bucket string
	Region string
}

// S3Sink buffers each table as NDJSON and uploads one object per table when
// the run commits.
type S3Sink struct {
	mu      sync.Mutex // batches may arrive from concurrent stages
	buffers map[string]*bytes.Buffer
	client  *s3.S3
	cfg     S3Config
}

func OpenS3Sink(cfg S3Config) (*S3Sink, error) {
	ss := session.Must(session.NewSession())
	client := s3.New(ss, aws.NewConfig().WithRegion(cfg.Region))
	return &S3Sink{
		buffers: make(map[string]*bytes.Buffer),
		client:  client,
		cfg:     cfg,
	}, nil
}

func (p *S3Sink) Prepare(ctx context.Context, tables []sink.TableSchema) error {
	for _, t := range tables {
		p.buffers[t.Name] = &bytes.Buffer{}
	}
	return nil
}

func (p *S3Sink) WriteBatch(ctx context.Context, rows []sink.Row) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range rows {
		buf, ok := p.buffers[r.Table()]
		if !ok {
			buf = &bytes.Buffer{}
			p.buffers[r.Table()] = buf
		}
		data, err := sink.RowToJSON(r)
		if err != nil {
			return err
		}
		if _, err := buf.Write(data); err != nil {
			return fmt.Errorf("failed to write record to buffer: %w", err)
		}
		if err := buf.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write new-line to buffer: %w", err)
		}
	}
	return nil
}

// Commit uploads one object per table. The pipeline calls it only after a
// completed run, so a failed run never publishes partial tables.
func (p *S3Sink) Commit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	stamp := time.Now().UnixMilli()
	for table, buf := range p.buffers {
		name := fmt.Sprintf("%s-%d.ndjson", table, stamp)
		_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket: aws.String(p.cfg.Bucket),
			Key:    aws.String(name),
			Body:   bytes.NewReader(buf.Bytes()),
		})
		if err != nil {
			return fmt.Errorf("failed to put object to s3: %w", err)
		}
	}
	p.buffers = make(map[string]*bytes.Buffer)
	return nil
}

// Close discards anything still buffered.
func (p *S3Sink) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffers = make(map[string]*bytes.Buffer)
	return nil
}
