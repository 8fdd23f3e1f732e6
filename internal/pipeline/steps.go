package pipeline

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wenhao/stockmind/backend/internal/artifact"
	"github.com/wenhao/stockmind/backend/internal/external/anue"
	"github.com/wenhao/stockmind/backend/internal/external/histock"
	"github.com/wenhao/stockmind/backend/internal/external/ptt"
	"github.com/wenhao/stockmind/backend/internal/external/twse"
	"github.com/wenhao/stockmind/backend/internal/storage"
	"github.com/wenhao/stockmind/backend/internal/transform"
	"github.com/wenhao/stockmind/backend/pkg/config"
	"github.com/wenhao/stockmind/backend/pkg/logger"
)

// Factory builds the standard step sequences, binding each transformer
// to its declared input and output artifacts.
type Factory struct {
	resolver *storage.Resolver
	sources  config.SourcesConfig

	twseClient    *twse.Client
	histockClient *histock.Client
	pttClient     *ptt.Client
	anueClient    *anue.Client

	logger *logger.Logger
}

// NewFactory creates a step factory
func NewFactory(
	resolver *storage.Resolver,
	sources config.SourcesConfig,
	twseClient *twse.Client,
	histockClient *histock.Client,
	pttClient *ptt.Client,
	anueClient *anue.Client,
	log *logger.Logger,
) *Factory {
	return &Factory{
		resolver:      resolver,
		sources:       sources,
		twseClient:    twseClient,
		histockClient: histockClient,
		pttClient:     pttClient,
		anueClient:    anueClient,
		logger:        log,
	}
}

// SymbolSteps is the full per-symbol sequence:
// fetch statements → fetch prices → derive ratios → derive scenarios.
func (f *Factory) SymbolSteps() []Step {
	return []Step{
		f.FetchStatementsStep(),
		f.FetchPricesStep(),
		f.RatiosStep(),
		f.ScenariosStep(),
	}
}

// BoardSteps is the per-board sequence: fetch posts → derive sentiment.
func (f *Factory) BoardSteps() []Step {
	return []Step{
		f.FetchPostsStep(),
		f.SentimentStep(),
	}
}

// NewsSteps is the per-category sequence: fetch news only.
func (f *Factory) NewsSteps() []Step {
	return []Step{f.FetchNewsStep()}
}

// statementPaths resolves the three raw statement artifacts of a symbol
func (f *Factory) statementPaths(symbol string) ([]string, error) {
	paths := make([]string, 0, len(histock.ReportTypes))
	for _, rt := range histock.ReportTypes {
		path, err := f.resolver.Resolve(artifact.RawStatement, histock.StatementID(symbol, rt))
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FetchStatementsStep fetches all three statement pages of a symbol.
func (f *Factory) FetchStatementsStep() Step {
	return Step{
		Name:    "fetch_statements",
		Kind:    StepFetch,
		Outputs: f.statementPaths,
		Run: func(ctx context.Context, symbol string) error {
			for _, rt := range histock.ReportTypes {
				path, err := f.resolver.Resolve(artifact.RawStatement, histock.StatementID(symbol, rt))
				if err != nil {
					return err
				}

				table, err := f.histockClient.FetchStatement(ctx, symbol, rt)
				if err != nil {
					return err
				}

				if err := storage.WriteCSV(path, table.CSVRows()); err != nil {
					return fmt.Errorf("write statement artifact: %w", err)
				}
			}
			return nil
		},
	}
}

// FetchPricesStep fetches the daily price series of a symbol.
func (f *Factory) FetchPricesStep() Step {
	return Step{
		Name: "fetch_prices",
		Kind: StepFetch,
		Outputs: func(symbol string) ([]string, error) {
			path, err := f.resolver.Resolve(artifact.RawPriceSeries, symbol)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
		Run: func(ctx context.Context, symbol string) error {
			path, err := f.resolver.Resolve(artifact.RawPriceSeries, symbol)
			if err != nil {
				return err
			}

			bars, err := f.twseClient.FetchPrices(ctx, symbol, f.sources.Price.LookbackMonths)
			if err != nil {
				return err
			}

			rows := [][]string{transform.PriceCSVHeader()}
			for _, bar := range bars {
				rows = append(rows, []string{
					bar.TradeDate.Format("2006-01-02"),
					strconv.FormatFloat(bar.Open, 'f', 2, 64),
					strconv.FormatFloat(bar.High, 'f', 2, 64),
					strconv.FormatFloat(bar.Low, 'f', 2, 64),
					strconv.FormatFloat(bar.Close, 'f', 2, 64),
					strconv.FormatInt(bar.Volume, 10),
				})
			}

			if err := storage.WriteCSV(path, rows); err != nil {
				return fmt.Errorf("write price artifact: %w", err)
			}
			return nil
		},
	}
}

// RatiosStep derives the financial ratio artifact from the three raw
// statements of a symbol.
func (f *Factory) RatiosStep() Step {
	return Step{
		Name:   "derive_ratios",
		Kind:   StepTransform,
		Inputs: f.statementPaths,
		Outputs: func(symbol string) ([]string, error) {
			path, err := f.resolver.Resolve(artifact.DerivedRatio, symbol)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
		Run: func(ctx context.Context, symbol string) error {
			inputs, err := f.statementPaths(symbol)
			if err != nil {
				return err
			}

			statements := make([]*transform.Statement, 0, len(inputs))
			for _, path := range inputs {
				rows, err := readRequiredCSV(path)
				if err != nil {
					return err
				}
				stmt, err := transform.ParseStatementCSV(rows)
				if err != nil {
					return fmt.Errorf("parse %s: %w", path, err)
				}
				statements = append(statements, stmt)
			}

			// statementPaths order is income, balance, cashflow
			table, err := transform.ComputeRatios(statements[0], statements[1], statements[2])
			if err != nil {
				return err
			}

			outPath, err := f.resolver.Resolve(artifact.DerivedRatio, symbol)
			if err != nil {
				return err
			}
			if err := storage.WriteCSV(outPath, table.CSVRows()); err != nil {
				return fmt.Errorf("write ratio artifact: %w", err)
			}
			return nil
		},
	}
}

// ScenariosStep derives prompt/completion training examples from the
// raw price series of a symbol.
func (f *Factory) ScenariosStep() Step {
	pricePath := func(symbol string) ([]string, error) {
		path, err := f.resolver.Resolve(artifact.RawPriceSeries, symbol)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	return Step{
		Name:   "derive_scenarios",
		Kind:   StepTransform,
		Inputs: pricePath,
		Outputs: func(symbol string) ([]string, error) {
			path, err := f.resolver.Resolve(artifact.DerivedTrainingExample, symbol+"_scenarios")
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
		Run: func(ctx context.Context, symbol string) error {
			inputs, err := pricePath(symbol)
			if err != nil {
				return err
			}
			rows, err := readRequiredCSV(inputs[0])
			if err != nil {
				return err
			}

			priceRows, err := transform.ParsePriceCSV(rows)
			if err != nil {
				return fmt.Errorf("parse %s: %w", inputs[0], err)
			}

			examples := transform.GenerateScenarios(symbol, priceRows)

			outPath, err := f.resolver.Resolve(artifact.DerivedTrainingExample, symbol+"_scenarios")
			if err != nil {
				return err
			}
			if err := storage.WriteJSONL(outPath, examples); err != nil {
				return fmt.Errorf("write scenario artifact: %w", err)
			}
			return nil
		},
	}
}

// FetchPostsStep fetches board posts with push comments.
func (f *Factory) FetchPostsStep() Step {
	return Step{
		Name: "fetch_posts",
		Kind: StepFetch,
		Outputs: func(board string) ([]string, error) {
			path, err := f.resolver.Resolve(artifact.RawSocialPost, board)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
		Run: func(ctx context.Context, board string) error {
			path, err := f.resolver.Resolve(artifact.RawSocialPost, board)
			if err != nil {
				return err
			}

			posts, err := f.pttClient.FetchBoard(ctx, board, f.sources.Social.Pages)
			if err != nil {
				return err
			}

			if err := storage.WriteJSONL(path, posts); err != nil {
				return fmt.Errorf("write posts artifact: %w", err)
			}
			return nil
		},
	}
}

// SentimentStep labels posts with the keyword rule table and emits
// training examples.
func (f *Factory) SentimentStep() Step {
	postsPath := func(board string) ([]string, error) {
		path, err := f.resolver.Resolve(artifact.RawSocialPost, board)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	return Step{
		Name:   "derive_sentiment",
		Kind:   StepTransform,
		Inputs: postsPath,
		Outputs: func(board string) ([]string, error) {
			path, err := f.resolver.Resolve(artifact.DerivedTrainingExample, board+"_sentiment")
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
		Run: func(ctx context.Context, board string) error {
			inputs, err := postsPath(board)
			if err != nil {
				return err
			}
			if _, err := os.Stat(inputs[0]); err != nil {
				return &artifact.MissingInputError{Path: inputs[0]}
			}

			posts, err := storage.ReadJSONL[ptt.Post](inputs[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", inputs[0], err)
			}

			texts := make([]transform.LabeledText, 0, len(posts))
			for _, post := range posts {
				texts = append(texts, transform.LabeledText{
					ID:   post.ID,
					Text: postText(post),
				})
			}

			examples := transform.GenerateSentimentExamples(texts)

			outPath, err := f.resolver.Resolve(artifact.DerivedTrainingExample, board+"_sentiment")
			if err != nil {
				return err
			}
			if err := storage.WriteJSONL(outPath, examples); err != nil {
				return fmt.Errorf("write sentiment artifact: %w", err)
			}
			return nil
		},
	}
}

// FetchNewsStep fetches the news list for one category.
func (f *Factory) FetchNewsStep() Step {
	return Step{
		Name: "fetch_news",
		Kind: StepFetch,
		Outputs: func(category string) ([]string, error) {
			path, err := f.resolver.Resolve(artifact.RawNews, category)
			if err != nil {
				return nil, err
			}
			return []string{path}, nil
		},
		Run: func(ctx context.Context, category string) error {
			path, err := f.resolver.Resolve(artifact.RawNews, category)
			if err != nil {
				return err
			}

			items, err := f.anueClient.FetchNews(ctx, category, f.sources.News.Limit)
			if err != nil {
				return err
			}

			if err := storage.WriteJSONL(path, items); err != nil {
				return fmt.Errorf("write news artifact: %w", err)
			}
			return nil
		},
	}
}

// readRequiredCSV reads a CSV input, mapping absence to the typed
// missing-input error so a must-run gate decision fails loudly.
func readRequiredCSV(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &artifact.MissingInputError{Path: path}
	}
	rows, err := storage.ReadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// postText concatenates a post's title, body and push comments for the
// keyword rules.
func postText(post ptt.Post) string {
	var b strings.Builder
	b.WriteString(post.Title)
	b.WriteString("\n")
	b.WriteString(post.Content)
	for _, push := range post.Pushes {
		b.WriteString("\n")
		b.WriteString(push.Content)
	}
	return b.String()
}
