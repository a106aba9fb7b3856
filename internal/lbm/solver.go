package lbm

import (
	"fmt"
	"math"

	"github.com/san-kum/latticeflow/internal/grid"
	"github.com/san-kum/latticeflow/internal/lattice"
	"github.com/san-kum/latticeflow/internal/parallel"
	"go.uber.org/zap"
)

// Params holds the quantities derived from Config at initialization.
type Params struct {
	Omega      float64
	Viscosity  float64
	SoundSpeed float64

	PsiInlet    float64
	PsiOutlet   float64
	PressInlet  float64
	PressOutlet float64
	PressGrad   float64

	// UPoise is the analytic Poiseuille centerline speed for the imposed
	// pressure gradient.
	UPoise   float64
	Reynolds float64

	// Kappa is the Korteweg capillarity coefficient of the Shan-Chen model.
	Kappa float64
}

func deriveParams(c Config, nx, ny int, psi func(float64) float64) Params {
	p := Params{
		Omega:      1. / c.Tau,
		Viscosity:  (c.Tau - 0.5) / 3.,
		SoundSpeed: 1. / math.Sqrt(3.),
		Kappa:      -c.GFluid / 18.,
	}
	p.PsiInlet = psi(c.RhoInlet)
	p.PsiOutlet = psi(c.RhoOutlet)
	p.PressInlet = c.RhoInlet/3. + c.GFluid*p.PsiInlet*p.PsiInlet/6.
	p.PressOutlet = c.RhoOutlet/3. + c.GFluid*p.PsiOutlet*p.PsiOutlet/6.
	if nx > 1 {
		p.PressGrad = (p.PressOutlet - p.PressInlet) / float64(nx-1)
	}
	if c.RhoInit > 0 {
		p.UPoise = -p.PressGrad * float64(ny*ny) / (8. * c.RhoInit * p.Viscosity)
	}
	p.Reynolds = p.UPoise * c.ReynoldsLength / p.Viscosity
	return p
}

// StepResult summarizes one Step.
type StepResult struct {
	Timestep int
	Mass     float64
	Volume   float64
	Reports  []BoundaryReport
}

// State is a restartable copy of the distributions.
type State struct {
	Timestep int
	F        []float64
}

// Solver advances the lattice one timestep at a time.
type Solver struct {
	cfg    Config
	params Params
	f      *grid.Fields
	pool   *parallel.Pool
	log    *zap.Logger

	psi   func(float64) float64
	relax relaxTarget

	timestep int
	mass     float64
	volume   float64

	prevNorm  float64
	diagReady bool
}

// New validates the configuration, allocates the field store and sets every
// fluid node to the hydrostatic equilibrium at RhoInit.
func New(topo *grid.Topology, cfg Config) (*Solver, error) {
	if topo == nil {
		return nil, fmt.Errorf("%w: nil topology", ErrInvalidConfig)
	}
	if err := topo.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(topo.NX, topo.NY); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	fields, err := grid.NewFields(topo)
	if err != nil {
		return nil, err
	}

	s := &Solver{
		cfg:  cfg,
		f:    fields,
		pool: parallel.New(cfg.Workers),
		log:  cfg.Logger,
		psi:  cfg.Potential.Func(cfg.Rho0),
	}
	s.relax = newRelaxTarget(cfg.Forcing, cfg.Tau)
	s.params = deriveParams(cfg, topo.NX, topo.NY, s.psi)

	s.initHydrostatic()
	s.Refresh()

	s.log.Info("solver initialized",
		zap.Int("nx", topo.NX),
		zap.Int("ny", topo.NY),
		zap.Int("fluid", topo.FluidCount()),
		zap.Int("workers", s.pool.Workers()),
		zap.Float64("tau", cfg.Tau),
		zap.Float64("omega", s.params.Omega),
		zap.Float64("viscosity", s.params.Viscosity),
		zap.Stringer("potential", cfg.Potential),
		zap.Stringer("forcing", cfg.Forcing),
		zap.Float64("press_grad", s.params.PressGrad),
		zap.Float64("u_poise", s.params.UPoise),
		zap.Float64("reynolds", s.params.Reynolds),
		zap.Float64("kappa", s.params.Kappa),
	)
	return s, nil
}

func (s *Solver) initHydrostatic() {
	f := s.f
	for k := 0; k < f.Len(); k++ {
		if !f.IsFluid(k) {
			continue
		}
		n := f.Dist(k)
		for q := range n {
			n[q] = s.cfg.RhoInit * lattice.Weights[q]
		}
	}
}

// Refresh recomputes the macroscopic caches, total mass and fluid volume
// from Cur. Call it after writing distributions through Fields.
func (s *Solver) Refresh() {
	f := s.f
	gx, gy := s.cfg.GravX, s.cfg.GravY
	s.mass, s.volume = 0, 0
	for k := 0; k < f.Len(); k++ {
		if !f.IsFluid(k) {
			f.Rho[k] = s.cfg.RhoSolid
			f.Ux[k], f.Uy[k], f.U2[k] = 0, 0, 0
			f.Press[k] = 0
			if s.cfg.Multiphase() {
				f.Psi[k] = lattice.SolidPotential
			}
			continue
		}
		rho, jx, jy := lattice.Moments(f.Dist(k))
		ux, uy := 0.5*gx, 0.5*gy
		if rho != 0 {
			ux += jx / rho
			uy += jy / rho
		}
		f.Rho[k] = rho
		f.Ux[k], f.Uy[k] = ux, uy
		f.U2[k] = ux*ux + uy*uy
		f.Press[k] = rho / 3.
		if s.cfg.Multiphase() {
			psi := s.psi(rho)
			f.Psi[k] = psi
			f.Press[k] += s.cfg.GFluid * psi * psi / 6.
		}
		s.mass += rho
		s.volume++
	}
}

// Step runs boundary enforcement, collision and streaming once.
func (s *Solver) Step() StepResult {
	reports := s.enforceBoundaries()
	s.mass = s.collide()
	s.volume = s.stream()
	s.timestep++
	return StepResult{
		Timestep: s.timestep,
		Mass:     s.mass,
		Volume:   s.volume,
		Reports:  reports,
	}
}

func (s *Solver) Config() Config       { return s.cfg }
func (s *Solver) Params() Params       { return s.params }
func (s *Solver) Timestep() int        { return s.timestep }
func (s *Solver) Mass() float64        { return s.mass }
func (s *Solver) Volume() float64      { return s.volume }
func (s *Solver) Workers() int         { return s.pool.Workers() }
func (s *Solver) Fields() *grid.Fields { return s.f }

// Density returns the cached density at (i, j). Solid nodes report RhoSolid.
func (s *Solver) Density(i, j int) float64 { return s.f.Rho[s.f.Index(i, j)] }

// Velocity returns the cached force-corrected velocity at (i, j).
func (s *Solver) Velocity(i, j int) (ux, uy float64) {
	k := s.f.Index(i, j)
	return s.f.Ux[k], s.f.Uy[k]
}

func (s *Solver) Pressure(i, j int) float64 { return s.f.Press[s.f.Index(i, j)] }

func (s *Solver) Potential(i, j int) float64 { return s.f.Psi[s.f.Index(i, j)] }

// Node is a copy of every cached field at one node.
type Node struct {
	Topo                        int
	Rho, Ux, Uy, U2, Press, Psi float64
}

// At returns the cached fields at (i, j).
func (s *Solver) At(i, j int) (Node, error) {
	if i < 0 || i >= s.f.NX || j < 0 || j >= s.f.NY {
		return Node{}, fmt.Errorf("%w: (%d,%d)", grid.ErrOutOfBounds, i, j)
	}
	k := s.f.Index(i, j)
	f := s.f
	return Node{
		Topo: f.Topo[k], Rho: f.Rho[k], Ux: f.Ux[k], Uy: f.Uy[k],
		U2: f.U2[k], Press: f.Press[k], Psi: f.Psi[k],
	}, nil
}

// Snapshot copies the current distributions.
func (s *Solver) Snapshot() State {
	st := State{Timestep: s.timestep, F: make([]float64, len(s.f.Cur))}
	copy(st.F, s.f.Cur)
	return st
}

// LoadState replaces the current distributions and timestep. The stability
// baseline is reset, so the next Diagnose never halts.
func (s *Solver) LoadState(st State) error {
	if len(st.F) == 0 {
		return ErrNoState
	}
	if len(st.F) != len(s.f.Cur) {
		return fmt.Errorf("%w: %d values for %dx%dx%d",
			ErrStateSize, len(st.F), s.f.NX, s.f.NY, lattice.Q)
	}
	if st.Timestep < 0 {
		return fmt.Errorf("%w: negative timestep %d", ErrStateTimestep, st.Timestep)
	}
	copy(s.f.Cur, st.F)
	s.timestep = st.Timestep
	s.diagReady = false
	s.Refresh()
	return nil
}
