package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/rs/zerolog/log"
)

// minReceiptLines is the number of detected text lines below which an image
// is not treated as a receipt.
const minReceiptLines = 3

// textDetector is the subset of the Rekognition client used here.
type textDetector interface {
	DetectText(ctx context.Context, in *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// TextCheckService rejects images without printed text before the expensive
// model call, using AWS Rekognition DetectText.
type TextCheckService struct {
	client textDetector
}

// NewTextCheckService loads the AWS SDK config for region and builds the client.
func NewTextCheckService(ctx context.Context, region string) (*TextCheckService, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &TextCheckService{client: rekognition.NewFromConfig(awsCfg)}, nil
}

// HasReceiptText reports whether image carries enough text lines to be a receipt.
// Rekognition only reads JPEG and PNG; other formats pass unchecked.
func (s *TextCheckService) HasReceiptText(ctx context.Context, image []byte, mimeType string) (bool, error) {
	if mimeType != "image/jpeg" && mimeType != "image/png" {
		return true, nil
	}

	out, err := s.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return false, fmt.Errorf("detect text: %w", err)
	}

	lines := 0
	for _, d := range out.TextDetections {
		if d.Type == types.TextTypesLine && aws.ToFloat32(d.Confidence) >= 80 {
			lines++
		}
	}
	log.Debug().Int("lines", lines).Msg("Receipt text check")
	return lines >= minReceiptLines, nil
}
