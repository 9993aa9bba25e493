package main

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cert-lv/docflow/pdk"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	log = zerolog.Nop()
	config = &Config{API: &APIConfig{MaxRecords: 10, MaxBodySize: 1 << 20}}

	os.Exit(m.Run())
}

/*
 * Processor routing incoming records to "success"
 * and adding one summary record
 */
type echoProcessor struct {
	pdk.Base

	fail bool
}

func (p *echoProcessor) Init(ctx pdk.InitContext) {
	p.Base.Init(ctx)
	p.SetRelationships(pdk.RelSuccess, pdk.RelOriginal)
}

func (p *echoProcessor) OnTrigger(ctx context.Context, pc pdk.ProcessContext, session pdk.Session) error {
	if p.fail {
		return fmt.Errorf("echo failed")
	}

	for _, record := range session.Records() {
		session.Transfer(record, pdk.RelSuccess)
	}

	summary := session.Create(nil, []byte(fmt.Sprintf(`{"count":%d}`, len(session.Records()))))
	summary.Attributes["batch"] = pc.Property(pdk.BatchSize).String()
	session.Transfer(summary, pdk.RelOriginal)

	return nil
}

func (p *echoProcessor) Stop() error {
	return nil
}

/*
 * Resolves a single "main" connection service
 */
func testLookup(id string) (interface{}, error) {
	if id == "main" {
		return "service", nil
	}

	return nil, pdk.ErrServiceNotFound
}
