// Package config reads job settings from the environment. A value written as
// "ssm:<parameter-name>" is fetched from SSM Parameter Store instead.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const ssmPrefix = "ssm:"

type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type Loader struct {
	getenv func(string) string
	ssm    ParameterGetter
	cache  map[string]string
}

// NewLoader builds a loader over getenv (os.Getenv when nil). ssm may be nil
// when no value is expected to reference Parameter Store.
func NewLoader(getenv func(string) string, ssm ParameterGetter) *Loader {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Loader{getenv: getenv, ssm: ssm, cache: map[string]string{}}
}

func (l *Loader) resolve(ctx context.Context, key, v string) (string, error) {
	if !strings.HasPrefix(v, ssmPrefix) {
		return v, nil
	}
	name := strings.TrimSpace(strings.TrimPrefix(v, ssmPrefix))
	if name == "" {
		return "", fmt.Errorf("env %s: empty ssm parameter name", key)
	}
	if cached, ok := l.cache[name]; ok {
		return cached, nil
	}
	if l.ssm == nil {
		return "", fmt.Errorf("env %s references %s but no ssm client is configured", key, name)
	}
	out, err := l.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm GetParameter %s: %w", name, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("ssm GetParameter %s: empty parameter", name)
	}
	val := strings.TrimSpace(aws.ToString(out.Parameter.Value))
	l.cache[name] = val
	return val, nil
}

// String returns the trimmed, resolved value of key, or def when unset.
func (l *Loader) String(ctx context.Context, key, def string) (string, error) {
	v := strings.TrimSpace(l.getenv(key))
	if v == "" {
		return def, nil
	}
	return l.resolve(ctx, key, v)
}

func (l *Loader) Int(ctx context.Context, key string, def int) (int, error) {
	v, err := l.String(ctx, key, "")
	if err != nil || v == "" {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("env %s: want a positive integer, got %q", key, v)
	}
	return n, nil
}

func (l *Loader) Duration(ctx context.Context, key string, def time.Duration) (time.Duration, error) {
	v, err := l.String(ctx, key, "")
	if err != nil || v == "" {
		return def, err
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("env %s: want a positive duration, got %q", key, v)
	}
	return d, nil
}

// List splits a comma separated value, dropping blanks.
func (l *Loader) List(ctx context.Context, key string) ([]string, error) {
	v, err := l.String(ctx, key, "")
	if err != nil || v == "" {
		return nil, err
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
