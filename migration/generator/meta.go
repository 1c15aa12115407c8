package generator

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge/core/destructive"
)

// metaDTO is the .meta.yaml artifact (§6): { version, description,
// dialect, checksum, destructive_report? }. Mirrors migrator's
// private meta type field-for-field; kept separate since the two
// packages read and write the artifact independently and neither
// should import the other just for this struct.
type metaDTO struct {
	Version           string                `yaml:"version"`
	Description       string                `yaml:"description"`
	Dialect           string                `yaml:"dialect"`
	Checksum          string                `yaml:"checksum"`
	DestructiveReport *destructiveReportDTO `yaml:"destructive_report,omitempty"`
}

type destructiveReportDTO struct {
	Items []destructiveItemDTO `yaml:"items"`
}

type destructiveItemDTO struct {
	Kind        string `yaml:"kind"`
	Table       string `yaml:"table,omitempty"`
	Column      string `yaml:"column,omitempty"`
	Description string `yaml:"description"`
}

func renderMeta(version, description, dialectName, checksum string, report *destructive.Report) ([]byte, error) {
	m := metaDTO{
		Version:     version,
		Description: description,
		Dialect:     dialectName,
		Checksum:    checksum,
	}

	if report.IsDestructive() {
		items := make([]destructiveItemDTO, len(report.Items))
		for i, item := range report.Items {
			items[i] = destructiveItemDTO{
				Kind:        string(item.Kind),
				Table:       item.Table,
				Column:      item.Column,
				Description: item.Description,
			}
		}
		m.DestructiveReport = &destructiveReportDTO{Items: items}
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling migration metadata: %w", err)
	}
	return b, nil
}
