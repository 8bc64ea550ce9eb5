package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"camhub/internal/domain"
	"camhub/internal/dto"
)

// uploadTokenTTL bounds how long a camera can hold upload credentials.
const uploadTokenTTL = 15 * time.Minute

// STSAPI is the slice of the STS client the token service needs; tests stub it.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// TokenService issues short-lived, write-only object-store credentials scoped
// to a single device's prefix. The device uploads snapshot bytes directly;
// this service never touches them.
type TokenService struct {
	sts     STSAPI
	roleARN string
	bucket  string
	region  string
}

func NewTokenService(client STSAPI, roleARN, bucket, region string) *TokenService {
	return &TokenService{sts: client, roleARN: roleARN, bucket: bucket, region: region}
}

func (s *TokenService) IssueUploadToken(ctx context.Context, deviceID string) (dto.TokenResponse, error) {
	if deviceID == "" {
		return dto.TokenResponse{}, fmt.Errorf("%w: device_id is required", domain.ErrValidation)
	}

	policy, err := json.Marshal(map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Effect":   "Allow",
			"Action":   []string{"s3:PutObject"},
			"Resource": []string{fmt.Sprintf("arn:aws:s3:::%s/devices/%s/*", s.bucket, deviceID)},
		}},
	})
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("marshal session policy: %w", err)
	}

	out, err := s.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(s.roleARN),
		RoleSessionName: aws.String("device-" + deviceID),
		DurationSeconds: aws.Int32(int32(uploadTokenTTL.Seconds())),
		Policy:          aws.String(string(policy)),
	})
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("assume upload role: %w", err)
	}
	creds := out.Credentials
	if creds == nil {
		return dto.TokenResponse{}, fmt.Errorf("assume upload role: empty credentials")
	}

	expiration := ""
	if creds.Expiration != nil {
		expiration = creds.Expiration.UTC().Format(time.RFC3339)
	}
	return dto.TokenResponse{
		AccessKeyID:     aws.ToString(creds.AccessKeyId),
		AccessKeySecret: aws.ToString(creds.SecretAccessKey),
		SecurityToken:   aws.ToString(creds.SessionToken),
		Expiration:      expiration,
		Bucket:          s.bucket,
		Region:          s.region,
	}, nil
}
