// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pubmed-insight/internal/citation"
	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// Citations runs the format_citations operation: load the named result
// sets and render one citation line per article, in stored order.
func (o *Orchestrator) Citations(ctx context.Context, req types.CitationsRequest) types.CitationsResponse {
	log := o.log.WithFields(logrus.Fields{"tool": "format_citations", "files": len(req.Filenames)})

	if len(req.Filenames) == 0 {
		return citationsFailure("no result files named")
	}

	found, missing, err := o.store.Load(ctx, req.Filenames)
	if err != nil {
		log.WithError(err).Error("loading result sets failed")
		return citationsFailure(fmt.Sprintf("loading result sets: %v", err))
	}
	if len(missing) > 0 {
		log.WithField("missing", missing).Warn("result files not found")
		return citationsFailure(fmt.Sprintf("result files not found: %s", strings.Join(missing, ", ")))
	}

	var citations []string
	for _, name := range req.Filenames {
		citations = append(citations, citation.Format(found[name].Articles)...)
	}

	log.WithField("citations", len(citations)).Info("citations formatted")
	return types.CitationsResponse{
		ToolResponse: types.ToolResponse{
			Success: true,
			Status:  types.StatusCitationsFormatted,
			Message: fmt.Sprintf("formatted %d citations", len(citations)),
		},
		Citations: citations,
	}
}

func citationsFailure(message string) types.CitationsResponse {
	return types.CitationsResponse{ToolResponse: types.ToolResponse{Status: types.StatusFormatFailed, Message: message}}
}
