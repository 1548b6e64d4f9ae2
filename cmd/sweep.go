/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smallpondtom/operator-inference/InputParameters"
	"github.com/smallpondtom/operator-inference/burgers"
	"github.com/smallpondtom/operator-inference/diagnostics"
	"github.com/smallpondtom/operator-inference/integrate"
	"github.com/smallpondtom/operator-inference/rom"
	"github.com/smallpondtom/operator-inference/utils"
)

// SweepCmd represents the sweep command
var SweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the basis-size sweep comparing inferred and intrusive reduced models",
	Long: `
Assembles the full-order Burgers operators, generates random-input training
trajectories, builds a POD basis and then, for every candidate basis size,
learns a reduced model by operator inference and projects one intrusively,
reporting reconstruction errors and conservation residuals side by side,

opinf sweep -I parameters.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		paramFile, err := cmd.Flags().GetString("parametersFile")
		if err != nil {
			panic(err)
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start().Stop()
		}
		sp := processSweepInput(paramFile)
		if err = RunSweep(sp); err != nil {
			log.Error().Err(err).Msg("sweep failed")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(SweepCmd)
	SweepCmd.Flags().StringP("parametersFile", "I", "", "YAML study parameters file")
	SweepCmd.Flags().Bool("profile", false, "write a CPU profile of the sweep")
}

func processSweepInput(paramFile string) (sp *InputParameters.StudyParameters) {
	if len(paramFile) == 0 {
		err := fmt.Errorf("must supply a study parameters file (-I, --parametersFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Burgers operator inference"
N: 129
Dt: 1.e-4
K: 500
Mu: 0.1
Ensembles: 10
InputVariant: unit  # or "small"
BasisSizes: [4, 8, 12, 16]
ModelForm: [linear, quadratic, input]
TimeScheme: continuous
DiffOrder: 1
Seed: 7
ReferenceAmps: [1.0]
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	data, err := ioutil.ReadFile(paramFile)
	if err != nil {
		panic(err)
	}
	sp = &InputParameters.StudyParameters{}
	if err = sp.Parse(data); err != nil {
		panic(err)
	}
	sp.Print()
	return
}

func modelConfig(sp *InputParameters.StudyParameters) rom.ModelConfig {
	cfg := rom.ModelConfig{}
	if len(sp.ModelForm) == 0 {
		cfg.Form = rom.Linear | rom.Quadratic | rom.Input
	}
	for _, term := range sp.ModelForm {
		switch term {
		case "linear":
			cfg.Form |= rom.Linear
		case "quadratic":
			cfg.Form |= rom.Quadratic
		case "input":
			cfg.Form |= rom.Input
		}
	}
	if sp.TimeScheme == "discrete" {
		cfg.Scheme = rom.Discrete
	}
	return cfg
}

// RunSweep executes the full study pipeline for one parameter set.
func RunSweep(sp *InputParameters.StudyParameters) error {
	var (
		dx   = 1. / float64(sp.N-1)
		dist = rom.UnitUniform
		amps = sp.ReferenceAmps
	)
	if sp.InputVariant == "small" {
		dist = rom.SmallUniform
	}
	if len(amps) == 0 {
		amps = []float64{1}
	}

	fom, err := burgers.Assemble(sp.N, dx, sp.Dt, sp.Mu)
	if err != nil {
		return err
	}
	log.Info().Int("N", sp.N).Float64("dx", dx).Float64("mu", sp.Mu).Msg("full-order operators assembled")
	sys := integrate.System{A: fom.A, F: fom.F, B: fom.B}

	cfg := rom.SnapshotConfig{
		K:         sp.K,
		M:         sp.Ensembles,
		Dt:        sp.Dt,
		Dist:      dist,
		DiffOrder: sp.DiffOrder,
		Seed:      sp.Seed,
	}
	ens, err := rom.GenerateSnapshots(sys, burgers.ZeroIC(sp.N), cfg)
	if err != nil {
		return err
	}
	_, snapCols := ens.X.Dims()
	log.Info().Int("trajectories", sp.Ensembles).Int("columns", snapCols).Msg("training snapshots generated")

	rmax := 0
	for _, r := range sp.BasisSizes {
		if r > rmax {
			rmax = r
		}
	}
	basis, err := rom.PODBasis(ens.X, rmax)
	if err != nil {
		return err
	}
	log.Info().Int("rmax", basis.MaxOrder()).
		Float64("sigma1", basis.S[0]).
		Msg("POD basis built")

	mc := modelConfig(sp)
	for _, amp := range amps {
		if err = sweepAmplitude(sp, fom, sys, ens, basis, mc, amp); err != nil {
			return err
		}
	}

	// Bounded search demonstrating the stability guard
	if mc.Form.Has(rom.Linear) {
		ops, err := rom.SearchStable(ens, basis, mc, rmax)
		switch {
		case errors.Is(err, rom.ErrNoStableModelFound):
			log.Warn().Int("rmax", rmax).Msg("no stable inferred model at any basis size")
		case err != nil:
			return err
		default:
			_, maxRe := ops.Stable()
			log.Info().Int("r", ops.R).Float64("maxRe", maxRe).Msg("largest stable inferred model")
		}
	}
	return nil
}

func sweepAmplitude(sp *InputParameters.StudyParameters, fom *burgers.FOM,
	sys integrate.System, ens rom.Ensemble, basis rom.Basis, mc rom.ModelConfig, amp float64) error {
	var (
		uref = burgers.ReferenceInput(sp.K, amp)
	)
	ref, err := integrate.SemiImplicit(sys, burgers.ZeroIC(sp.N), sp.Dt, uref)
	if err != nil {
		return err
	}
	e := diagnostics.Energy(ref.X)
	log.Info().Float64("amp", amp).Float64("energyFinal", e[len(e)-1]).Msg("reference trajectory computed")

	fmt.Printf("u_ref = %g\n", amp)
	fmt.Printf("%4s %12s %12s %12s %12s %8s\n", "r", "err_inf", "err_int", "res_inf", "res_int", "stable")
	for _, r := range sp.BasisSizes {
		var (
			Vr  = basis.Vr(r)
			icr = rom.Project(Vr, utils.NewMatrix(sp.N, 1, burgers.ZeroIC(sp.N))).Col(0).Data()
		)
		intOps, err := rom.IntrusiveProject(fom, Vr)
		if err != nil {
			return err
		}
		infOps, err := rom.Infer(ens, Vr, mc)
		if err != nil {
			return err
		}
		stable, _ := infOps.Stable()

		errInf := simulateReduced(infOps, Vr, icr, sp.Dt, uref, ref.X)
		errInt := simulateReduced(intOps, Vr, icr, sp.Dt, uref, ref.X)

		resInf, resInt := "-", "-"
		if mc.Form.Has(rom.Quadratic) {
			if v, err := diagnostics.ResidualF(infOps.F); err == nil {
				resInf = fmt.Sprintf("%12.4e", v)
			}
			if v, err := diagnostics.ResidualF(intOps.F); err == nil {
				resInt = fmt.Sprintf("%12.4e", v)
			}
		}
		fmt.Printf("%4d %12s %12s %12s %12s %8v\n", r, errInf, errInt, resInf, resInt, stable)
	}
	return nil
}

// simulateReduced runs one reduced model against the reference input and
// formats its lifted reconstruction error; a diverged run is reported as
// such instead of aborting the sweep.
func simulateReduced(ops rom.Operators, Vr utils.Matrix, icr []float64,
	dt float64, uref []float64, Xref utils.Matrix) string {
	traj, err := integrate.SemiImplicit(ops.System(), icr, dt, uref)
	switch {
	case errors.Is(err, integrate.ErrIntegrationDiverged):
		return fmt.Sprintf("diverged@%d", traj.Steps)
	case err != nil:
		return "failed"
	}
	return fmt.Sprintf("%12.4e", rom.RelativeError(Xref, rom.Lift(Vr, traj.X)))
}
