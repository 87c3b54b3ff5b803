// Package classifier tags posts with SDGs and a dominant emotion through the
// completion client.
package classifier

import (
	"context"
	"fmt"

	"github.com/kapu/sdg-pulse/internal/constants"
	"github.com/kapu/sdg-pulse/internal/domain"
	"github.com/kapu/sdg-pulse/internal/prompt"
	"github.com/kapu/sdg-pulse/internal/service/ai"
	"github.com/kapu/sdg-pulse/internal/service/batch"
	"github.com/kapu/sdg-pulse/internal/util"
	"go.uber.org/zap"
)

// Completer is the part of ai.Client the drivers need.
type Completer interface {
	CallTask(ctx context.Context, task string, prompt string, extra ai.Params) (*ai.Reply, error)
}

type SDGClassifier struct {
	client Completer
	logger *zap.Logger
}

func NewSDGClassifier(client Completer, logger *zap.Logger) *SDGClassifier {
	return &SDGClassifier{client: client, logger: logger}
}

// Classify returns the goals a post maps to. A post may map to none.
func (c *SDGClassifier) Classify(ctx context.Context, text string) (*domain.SDGResult, error) {
	reply, err := c.client.CallTask(ctx, ai.TaskSDGClassification, prompt.SDGClassification(text), nil)
	if err != nil {
		return nil, err
	}

	result, err := ai.ParseStructured[domain.SDGResult](reply.Text)
	if err != nil {
		c.logger.Warn("SDG classification output rejected",
			zap.String("raw", util.TruncateString(reply.Text, constants.TextLimits.RawPreviewLength)),
			zap.Error(err),
		)
		ai.ForgetRejected(ctx, c.client, reply)
		return nil, err
	}
	if result.SDG == nil {
		result.SDG = []domain.SDG{}
	}
	return result, nil
}

// ClassifyAll runs Classify over posts with bounded concurrency. Successful
// posts come back with SDG set; failed ones keep trend and text with a null SDG.
func (c *SDGClassifier) ClassifyAll(ctx context.Context, posts []domain.Post, concurrency int) ([]domain.Post, []domain.SDGFailure) {
	results := batch.Run(ctx, posts, batch.Options{Concurrency: concurrency, Name: "sdg", Logger: c.logger},
		func(ctx context.Context, post domain.Post) (domain.Post, error) {
			res, err := c.Classify(ctx, post.Text)
			if err != nil {
				return domain.Post{}, err
			}
			post.SDG = res.SDG
			return post, nil
		})

	succeeded, failedPosts := batch.Partition(results)
	failed := make([]domain.SDGFailure, len(failedPosts))
	for i, p := range failedPosts {
		failed[i] = domain.SDGFailure{Trend: p.Trend, Text: p.Text}
	}
	return succeeded, failed
}

type EmotionDetector struct {
	client Completer
	logger *zap.Logger
}

func NewEmotionDetector(client Completer, logger *zap.Logger) *EmotionDetector {
	return &EmotionDetector{client: client, logger: logger}
}

// Detect returns the single dominant emotion of a post. The classification task
// asks for JSON mode, so an object reply is expected; prose around the object is
// tolerated once through ParseStructured.
func (d *EmotionDetector) Detect(ctx context.Context, text string) (*domain.EmotionResult, error) {
	reply, err := d.client.CallTask(ctx, ai.TaskClassification, prompt.EmotionDetection(text), nil)
	if err != nil {
		return nil, err
	}

	result, err := decodeEmotion(reply)
	if err != nil {
		d.logger.Warn("Emotion detection output rejected",
			zap.String("shape", reply.Shape.String()),
			zap.String("raw", util.TruncateString(reply.Text, constants.TextLimits.RawPreviewLength)),
			zap.Error(err),
		)
		ai.ForgetRejected(ctx, d.client, reply)
		return nil, err
	}
	return result, nil
}

func decodeEmotion(reply *ai.Reply) (*domain.EmotionResult, error) {
	if reply.Shape == ai.ShapeObject {
		var result domain.EmotionResult
		if err := reply.Decode(&result); err != nil {
			return nil, fmt.Errorf("decode emotion reply: %w", err)
		}
		if err := ai.ValidateStruct(&result); err != nil {
			return nil, fmt.Errorf("validate emotion reply: %w", err)
		}
		return &result, nil
	}
	return ai.ParseStructured[domain.EmotionResult](reply.Text)
}

// DetectAll runs Detect over posts with bounded concurrency.
func (d *EmotionDetector) DetectAll(ctx context.Context, posts []domain.Post, concurrency int) ([]domain.Post, []domain.EmotionFailure) {
	results := batch.Run(ctx, posts, batch.Options{Concurrency: concurrency, Name: "emotion", Logger: d.logger},
		func(ctx context.Context, post domain.Post) (domain.Post, error) {
			res, err := d.Detect(ctx, post.Text)
			if err != nil {
				return domain.Post{}, err
			}
			emotion := res.Emotion
			post.Emotion = &emotion
			return post, nil
		})

	succeeded, failedPosts := batch.Partition(results)
	failed := make([]domain.EmotionFailure, len(failedPosts))
	for i, p := range failedPosts {
		failed[i] = domain.EmotionFailure{Trend: p.Trend, Text: p.Text}
	}
	return succeeded, failed
}
