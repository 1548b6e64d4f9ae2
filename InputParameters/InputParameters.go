package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type StudyParameters struct {
	Title         string    `yaml:"Title"`
	N             int       `yaml:"N"`             // grid points
	Dt            float64   `yaml:"Dt"`            // integrator time step
	K             int       `yaml:"K"`             // steps per trajectory
	Mu            float64   `yaml:"Mu"`            // diffusion coefficient
	Ensembles     int       `yaml:"Ensembles"`     // number of random-input training trajectories
	InputVariant  string    `yaml:"InputVariant"`  // "unit" for U(0,1), "small" for U(-0.1,0.1)
	BasisSizes    []int     `yaml:"BasisSizes"`    // candidate reduced orders, ascending
	ModelForm     []string  `yaml:"ModelForm"`     // subset of {"linear","quadratic","input"}
	TimeScheme    string    `yaml:"TimeScheme"`    // "continuous" or "discrete"
	DiffOrder     int       `yaml:"DiffOrder"`     // derivative estimate order, 1 or 2
	Seed          uint64    `yaml:"Seed"`
	ReferenceAmps []float64 `yaml:"ReferenceAmps"` // boundary forcing amplitudes for evaluation
}

func (sp *StudyParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, sp); err != nil {
		return err
	}
	return sp.validate()
}

func (sp *StudyParameters) validate() error {
	if sp.N < 3 {
		return fmt.Errorf("N = %d, need at least 3 grid points", sp.N)
	}
	if sp.Dt <= 0 {
		return fmt.Errorf("Dt = %g, need a positive time step", sp.Dt)
	}
	if sp.K < 2 {
		return fmt.Errorf("K = %d, need at least 2 steps per trajectory", sp.K)
	}
	if sp.Ensembles < 1 {
		return fmt.Errorf("Ensembles = %d, need at least one training trajectory", sp.Ensembles)
	}
	switch sp.InputVariant {
	case "", "unit", "small":
	default:
		return fmt.Errorf("unknown InputVariant %q, want unit or small", sp.InputVariant)
	}
	switch sp.TimeScheme {
	case "", "continuous", "discrete":
	default:
		return fmt.Errorf("unknown TimeScheme %q, want continuous or discrete", sp.TimeScheme)
	}
	for _, term := range sp.ModelForm {
		switch term {
		case "linear", "quadratic", "input":
		default:
			return fmt.Errorf("unknown ModelForm term %q", term)
		}
	}
	for i, r := range sp.BasisSizes {
		if r < 1 || r > sp.N {
			return fmt.Errorf("BasisSizes[%d] = %d out of range 1..%d", i, r, sp.N)
		}
	}
	return nil
}

func (sp *StudyParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sp.Title)
	fmt.Printf("[%d]\t\t\t= N\n", sp.N)
	fmt.Printf("%8.2e\t\t= Dt\n", sp.Dt)
	fmt.Printf("[%d]\t\t\t= K\n", sp.K)
	fmt.Printf("%8.5f\t\t= Mu\n", sp.Mu)
	fmt.Printf("[%d]\t\t\t= Ensembles\n", sp.Ensembles)
	fmt.Printf("[%s]\t\t= InputVariant\n", sp.InputVariant)
	fmt.Printf("%v\t\t= BasisSizes\n", sp.BasisSizes)
	fmt.Printf("%v\t= ModelForm\n", sp.ModelForm)
	fmt.Printf("[%s]\t= TimeScheme\n", sp.TimeScheme)
}
