// Package seed builds the demo population: a curated set of archetype users,
// a fixed list of biased posts and the simulated engagement between them.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"bridgefeed/internal/drift"
	"bridgefeed/internal/engagement"
	"bridgefeed/internal/models"
	"bridgefeed/internal/simulation"
	"bridgefeed/internal/store"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/yaml.v3"
)

//go:embed population.yaml
var populationYAML []byte

// Rand is the randomness the generator needs. *rand.Rand satisfies it.
type Rand interface {
	simulation.Rand
	Int63() int64
}

// Member is one curated user of the fixture.
type Member struct {
	Name    string    `yaml:"name"`
	Profile []float64 `yaml:"profile"`
}

// Clusters groups the curated users by archetype.
type Clusters struct {
	Right  []Member `yaml:"right"`
	Left   []Member `yaml:"left"`
	Center []Member `yaml:"center"`
	Cross  []Member `yaml:"cross"`
}

// PostSpec is one fixture post.
type PostSpec struct {
	Bias    models.Bias `yaml:"bias"`
	Content string      `yaml:"content"`
}

// Population is the parsed fixture.
type Population struct {
	Clusters Clusters   `yaml:"clusters"`
	Posts    []PostSpec `yaml:"posts"`
}

// LoadPopulation parses a population fixture and checks that member names
// are unique, every profile is well formed and every post bias has a cluster
// to draw authors from.
func LoadPopulation(data []byte) (*Population, error) {
	var pop Population
	if err := yaml.Unmarshal(data, &pop); err != nil {
		return nil, fmt.Errorf("parse population: %w", err)
	}
	seen := make(map[string]bool)
	for _, group := range [][]Member{pop.Clusters.Right, pop.Clusters.Left, pop.Clusters.Center, pop.Clusters.Cross} {
		for _, m := range group {
			if m.Name == "" {
				return nil, fmt.Errorf("population member without a name")
			}
			if seen[m.Name] {
				return nil, fmt.Errorf("duplicate population member %q", m.Name)
			}
			seen[m.Name] = true
			if _, err := m.profile(); err != nil {
				return nil, fmt.Errorf("member %q: %w", m.Name, err)
			}
		}
	}
	for i, p := range pop.Posts {
		bias, err := models.ParseBias(string(p.Bias))
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}
		if len(pop.cluster(bias)) == 0 {
			return nil, fmt.Errorf("post %d: no %s cluster to draw an author from", i, bias)
		}
		pop.Posts[i].Bias = bias
	}
	return &pop, nil
}

// DefaultPopulation returns the embedded fixture.
func DefaultPopulation() (*Population, error) {
	return LoadPopulation(populationYAML)
}

func (m Member) profile() (models.Profile, error) {
	if len(m.Profile) != models.DimensionCount {
		return models.Profile{}, fmt.Errorf("profile needs %d values, got %d", models.DimensionCount, len(m.Profile))
	}
	var p models.Profile
	copy(p[:], m.Profile)
	return p, p.Validate()
}

func (p *Population) cluster(bias models.Bias) []Member {
	switch bias {
	case models.BiasRight:
		return p.Clusters.Right
	case models.BiasLeft:
		return p.Clusters.Left
	case models.BiasCenter:
		return p.Clusters.Center
	}
	return nil
}

// Options tune a generation run.
type Options struct {
	// ExtraUsers adds users with uniformly sampled profiles and fake names.
	ExtraUsers int
	// Now stamps created entities. Defaults to time.Now.
	Now func() time.Time
}

// Generator builds fresh demo states. It is not safe for concurrent use.
type Generator struct {
	pop     *Population
	rng     Rand
	sim     *simulation.Simulator
	applier *engagement.Applier
	opts    Options
}

// NewGenerator returns a generator over pop drawing all randomness from rng.
func NewGenerator(pop *Population, rng Rand, applier *engagement.Applier, opts Options) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if applier == nil {
		applier = engagement.NewApplier(drift.NewEngine())
	}
	return &Generator{
		pop:     pop,
		rng:     rng,
		sim:     simulation.NewSimulator(rng),
		applier: applier,
		opts:    opts,
	}
}

// Generate builds a new state holding the population, its posts and the
// simulated reactions. The caller installs it with store.Swap, so a failed or
// cancelled run never leaves a partial population behind.
func (g *Generator) Generate(ctx context.Context) (*store.State, error) {
	st := store.NewState()
	now := g.opts.Now()

	ids := make(map[string]uint)
	groups := []struct {
		name    string
		members []Member
	}{
		{"right", g.pop.Clusters.Right},
		{"left", g.pop.Clusters.Left},
		{"center", g.pop.Clusters.Center},
		{"cross", g.pop.Clusters.Cross},
	}
	for _, grp := range groups {
		for _, m := range grp.members {
			p, err := m.profile()
			if err != nil {
				return nil, fmt.Errorf("member %q: %w", m.Name, err)
			}
			ids[m.Name] = st.AddUser(m.Name, p, now).ID
		}
	}

	if g.opts.ExtraUsers > 0 {
		faker := gofakeit.New(g.rng.Int63())
		for i := 0; i < g.opts.ExtraUsers; i++ {
			st.AddUser(faker.Name(), SampleProfile(g.rng), now)
		}
	}

	for _, spec := range g.pop.Posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cluster := g.pop.cluster(spec.Bias)
		if len(cluster) == 0 {
			return nil, fmt.Errorf("no %s cluster to draw an author from", spec.Bias)
		}
		author := cluster[g.rng.Intn(len(cluster))]
		post := st.AddPost(ids[author.Name], spec.Content, spec.Bias, now)

		for _, u := range st.Users() {
			if u.ID == post.AuthorID {
				continue
			}
			kind, ok := g.sim.MaybeReact(*u, spec.Bias)
			if !ok {
				continue
			}
			g.applier.Apply(ctx, st, models.Reaction{
				UserID:     u.ID,
				TargetType: models.TargetPost,
				TargetID:   post.ID,
				Type:       kind,
				CreatedAt:  now,
			}, engagement.SourceSimulated)
		}
	}
	return st, nil
}

// SampleProfile draws every dimension uniformly from [-1, 1].
func SampleProfile(rng simulation.Rand) models.Profile {
	var p models.Profile
	for _, d := range models.Dimensions() {
		p.Set(d, rng.Float64()*2-1)
	}
	return p
}
