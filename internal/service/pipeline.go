package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
)

// Pipeline orchestrates transcript processing end to end: parse, recognize,
// summarize, classify, compose. Cache and repository are optional; when
// present, results are memoized and archived by transcript hash.
type Pipeline struct {
	logger     *logrus.Logger
	recognizer domain.EntityRecognizer
	summarizer *Summarizer
	sentiment  *SentimentService
	soap       *SoapComposer
	cache      domain.ResultCache
	repository domain.NoteRepository
}

// NewPipeline creates a processing pipeline. cache and repository may be nil.
func NewPipeline(
	logger *logrus.Logger,
	recognizer domain.EntityRecognizer,
	sentiment *SentimentService,
	cache domain.ResultCache,
	repository domain.NoteRepository,
) *Pipeline {
	return &Pipeline{
		logger:     logger,
		recognizer: recognizer,
		summarizer: NewSummarizer(logger),
		sentiment:  sentiment,
		soap:       NewSoapComposer(logger),
		cache:      cache,
		repository: repository,
	}
}

// Repository returns the configured note repository, or nil.
func (p *Pipeline) Repository() domain.NoteRepository {
	return p.repository
}

// TranscriptHash returns the SHA-256 hex digest of the raw transcript. It is
// the cache key and the archive dedup key.
func TranscriptHash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ProcessTranscript converts a raw transcript into the combined result. An
// empty transcript or one with no tagged utterances is not an error: it
// yields a well-formed sparse result. Collaborator failures propagate
// wrapped in ErrCollaborator.
func (p *Pipeline) ProcessTranscript(ctx context.Context, raw string) (*domain.TranscriptResult, error) {
	hash := TranscriptHash(raw)
	log := p.logger.WithField("transcript_hash", hash[:12])

	if p.cache != nil {
		if cached, ok, err := p.cache.Get(ctx, hash); err != nil {
			log.WithError(err).Warn("Result cache read failed")
		} else if ok {
			log.Debug("Result cache hit")
			return cached, nil
		}
	}

	utterances := ParseTranscript(raw)
	fullText := JoinText(utterances)

	entities, err := p.recognizer.Recognize(ctx, fullText)
	if err != nil {
		return nil, fmt.Errorf("%w: recognizing entities: %w", domain.ErrCollaborator, err)
	}

	summary := p.summarizer.GenerateMedicalSummary(utterances, entities, fullText)
	sentimentIntent, err := p.sentiment.SummarizeSentimentIntent(ctx, utterances)
	if err != nil {
		return nil, fmt.Errorf("%w: summarizing sentiment: %w", domain.ErrCollaborator, err)
	}

	patient, doctor := PartitionBySpeaker(utterances)
	note := p.soap.GenerateSoap(patient, doctor, summary)

	result := &domain.TranscriptResult{
		MedicalSummary:  summary,
		SentimentIntent: sentimentIntent,
		SoapNote:        note,
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, hash, result); err != nil {
			log.WithError(err).Warn("Result cache write failed")
		}
	}

	log.WithFields(logrus.Fields{
		"utterances": len(utterances),
		"entities":   len(entities),
	}).Info("Transcript processed")

	return result, nil
}

// ProcessAndStore processes a transcript and archives the result. When a
// record with the same transcript hash already exists, the stored record is
// returned without reprocessing.
func (p *Pipeline) ProcessAndStore(ctx context.Context, raw string) (*domain.NoteRecord, error) {
	if p.repository == nil {
		return nil, errors.New("note repository not configured")
	}

	hash := TranscriptHash(raw)
	existing, err := p.repository.GetByHash(ctx, hash)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up note by hash: %w", err)
	}

	result, err := p.ProcessTranscript(ctx, raw)
	if err != nil {
		return nil, err
	}

	record := &domain.NoteRecord{
		ID:             uuid.New().String(),
		TranscriptHash: hash,
		Transcript:     raw,
		Result:         *result,
		CreatedAt:      time.Now().UTC(),
	}
	if err := p.repository.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("saving note record: %w", err)
	}

	return record, nil
}
