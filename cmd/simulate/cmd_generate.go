package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"bridgefeed/internal/bootstrap"
	"bridgefeed/internal/models"
	"bridgefeed/internal/seed"
	"bridgefeed/internal/store"

	"github.com/spf13/cobra"
)

type postSummary struct {
	ID             uint        `json:"id"`
	Author         string      `json:"author"`
	Bias           models.Bias `json:"bias"`
	Reactions      int         `json:"reactions"`
	DiversityScore float64     `json:"diversity_score"`
	Content        string      `json:"content"`
}

type report struct {
	Seed     int64         `json:"seed"`
	Stats    models.Stats  `json:"stats"`
	TopPosts []postSummary `json:"top_posts"`
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a population and print its stats and top posts",
		RunE:  runGenerate,
	}
	cmd.Flags().Int("top", 5, "Number of top posts to list")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	seedVal, _ := cmd.Flags().GetInt64("seed")
	top, _ := cmd.Flags().GetInt("top")
	jsonOut, _ := cmd.Flags().GetBool("json")

	st, err := generate(cmd, seedVal)
	if err != nil {
		return err
	}

	r := buildReport(st, seedVal, top)
	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(out, "seed %d: %d users, %d posts, %d reactions, avg diversity %.2f\n",
		r.Seed, r.Stats.TotalUsers, r.Stats.TotalPosts, r.Stats.TotalReactions, r.Stats.AvgDiversityScore)
	for i, p := range r.TopPosts {
		fmt.Fprintf(out, "%2d. [%6.2f] %-6s %3d reactions  %s: %s\n",
			i+1, p.DiversityScore, p.Bias, p.Reactions, p.Author, p.Content)
	}
	return nil
}

// generate runs one generation with the persistent flags of cmd.
func generate(cmd *cobra.Command, seedVal int64) (*store.State, error) {
	extra, _ := cmd.Flags().GetInt("extra-users")
	path, _ := cmd.Flags().GetString("population")
	if extra < 0 {
		return nil, fmt.Errorf("--extra-users must not be negative")
	}

	pop, err := loadPopulation(path)
	if err != nil {
		return nil, err
	}

	gen := seed.NewGenerator(pop, bootstrap.NewRand(seedVal), nil, seed.Options{ExtraUsers: extra})
	st, err := gen.Generate(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("generate population: %w", err)
	}
	return st, nil
}

func loadPopulation(path string) (*seed.Population, error) {
	if path == "" {
		return seed.DefaultPopulation()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read population: %w", err)
	}
	return seed.LoadPopulation(data)
}

func buildReport(st *store.State, seedVal int64, top int) report {
	posts := st.Posts()
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].DiversityScore > posts[j].DiversityScore })
	if top >= 0 && top < len(posts) {
		posts = posts[:top]
	}

	r := report{Seed: seedVal, Stats: st.Stats(), TopPosts: make([]postSummary, 0, len(posts))}
	for _, p := range posts {
		r.TopPosts = append(r.TopPosts, postSummary{
			ID:             p.ID,
			Author:         st.AuthorName(p.AuthorID),
			Bias:           p.Bias,
			Reactions:      len(p.Reactions),
			DiversityScore: p.DiversityScore,
			Content:        p.Content,
		})
	}
	return r
}
