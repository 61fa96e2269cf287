// common.go
//
// Contract assembly and part library data service
// Copyright (c) 2026 AgencyKit <dev@agencykit.io>
//
// This file is part of contractd.
// contractd is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// contractd is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with contractd.
// If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"github.com/agencykit/contractd/internal/builder"
	"github.com/agencykit/contractd/internal/template"
	"github.com/agencykit/contractd/internal/types"
)

// dataBundle is the optional data-merge payload accepted by the compile and
// save endpoints. Both halves may be absent; compilation then leaves tokens
// visible instead of failing.
type dataBundle struct {
	ContractData map[string]interface{} `json:"contractData"`
	RelatedData  template.RelatedData   `json:"relatedData"`
}

// renderContext converts a request data bundle to a template context.
func renderContext(bundle dataBundle) template.Context {
	return template.Context{
		Scalars: bundle.ContractData,
		Related: bundle.RelatedData,
	}
}

// normalizeParts re-derives contiguous order indexes from the submitted part
// list before compilation or persistence.
func normalizeParts(parts types.FlexList[builder.Part]) []builder.Part {
	state := builder.Normalize(builder.State{Parts: parts.Slice()})
	return state.Parts
}

// partView is the wire shape of a contract part within contract responses.
type partView struct {
	ID         uint64 `json:"id"`
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	IsRequired bool   `json:"is_required"`
	OrderIndex int    `json:"order_index"`
}

func partViews(parts []builder.Part) []partView {
	views := make([]partView, len(parts))
	for i, p := range parts {
		views[i] = partView{
			ID:         p.PartID,
			ExternalID: p.ExternalID,
			Title:      p.Title,
			Content:    p.Content,
			IsRequired: p.IsRequired,
			OrderIndex: p.OrderIndex,
		}
	}
	return views
}
