package ingest

import (
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/asset-cli/internal/model"
)

// Register is an asset register file: operators and the assets they run.
//
//	operators:
//	  - id: op-1
//	    name: Basin Energy
//	    compliance_flags: [late_filing]
//	assets:
//	  - id: well-1
//	    name: Permian 7H
//	    operator_id: op-1
//	    profile:
//	      commodity: oil
//	      decline_rate: 0.18
//	      spud_date: 2012-05-01
type Register struct {
	Operators []model.Operator `yaml:"operators"`
	Assets    []model.Asset    `yaml:"assets"`
}

// ReadRegister decodes a YAML asset register. Unknown keys are rejected.
// An asset that names a listed operator and carries no flags of its own
// inherits that operator's compliance flags.
func ReadRegister(r io.Reader) (*Register, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var reg Register
	if err := dec.Decode(&reg); err != nil {
		if err == io.EOF {
			return &reg, nil
		}
		return nil, eris.Wrap(err, "ingest: decode register")
	}

	operators := make(map[string]model.Operator, len(reg.Operators))
	for i, op := range reg.Operators {
		if op.ID == "" {
			return nil, eris.Errorf("ingest: operator %d has no id", i)
		}
		operators[op.ID] = op
	}

	seen := make(map[string]struct{}, len(reg.Assets))
	for i := range reg.Assets {
		a := &reg.Assets[i]
		if a.ID == "" {
			return nil, eris.Errorf("ingest: asset %d has no id", i)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, eris.Errorf("ingest: duplicate asset id %q", a.ID)
		}
		seen[a.ID] = struct{}{}

		if a.OperatorID == "" {
			continue
		}
		op, ok := operators[a.OperatorID]
		if !ok {
			continue
		}
		a.OperatorName = op.Name
		if len(a.Profile.ComplianceFlags) == 0 {
			a.Profile.ComplianceFlags = op.ComplianceFlags
		}
	}
	return &reg, nil
}
