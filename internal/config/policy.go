package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// UploadPolicy ограничения пакетной загрузки файлов.
// Пустой AllowedMimeTypes разрешает любые типы.
type UploadPolicy struct {
	MaxFileSize      int64    `validate:"gt=0"`
	MaxBatchFiles    int      `validate:"gt=0"`
	AllowedMimeTypes []string `validate:"dive,required,contains=/"`
}

// policyFile формат файла политики загрузки.
type policyFile struct {
	MaxFileSizeMB    int64    `mapstructure:"max_file_size_mb"`
	MaxBatchFiles    int      `mapstructure:"max_batch_files"`
	AllowedMimeTypes []string `mapstructure:"allowed_mime_types"`
}

var validate = validator.New()

// UploadPolicy собирает политику из env/флагов.
func (cfg *Config) UploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFileSize:      cfg.UploadMaxMB << 20,
		MaxBatchFiles:    cfg.UploadMaxFiles,
		AllowedMimeTypes: normalizeMimeTypes(cfg.AllowedMimeTypes),
	}
}

// LoadUploadPolicy читает политику из файла (yaml/toml/json) поверх base.
// Ключи, которых нет в файле, остаются из base. Пустой path возвращает base.
func LoadUploadPolicy(path string, base UploadPolicy) (UploadPolicy, error) {
	p := base
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return base, fmt.Errorf("read upload policy %s: %w", path, err)
		}
		var f policyFile
		if err := v.Unmarshal(&f); err != nil {
			return base, fmt.Errorf("decode upload policy %s: %w", path, err)
		}
		if v.IsSet("max_file_size_mb") {
			p.MaxFileSize = f.MaxFileSizeMB << 20
		}
		if v.IsSet("max_batch_files") {
			p.MaxBatchFiles = f.MaxBatchFiles
		}
		if v.IsSet("allowed_mime_types") {
			p.AllowedMimeTypes = normalizeMimeTypes(f.AllowedMimeTypes)
		}
	}
	if err := validate.Struct(p); err != nil {
		return base, formatValidationError(err)
	}
	return p, nil
}

func normalizeMimeTypes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, m := range in {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func formatValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return fmt.Errorf("upload policy: %s failed on '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
