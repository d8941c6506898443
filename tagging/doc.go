// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tagging turns raw candidate phrases into a short, ranked list of
// display tags.
//
// Candidates are grouped case-insensitively and ranked by frequency. Ties go
// to the longer phrase, which favours specific multi-word tags such as
// "Mars Mission" over generic ones, and then to first appearance so output is
// reproducible. Winners are rendered in title case:
//
//	tags := tagging.RankTags([]string{"Mars", "mars", "Water"}, 6)
//	// ["Mars", "Water"]
//
// A Ranker exposes the limits as configuration and can drive an
// ai.PhraseExtractor directly:
//
//	r := tagging.NewRanker(tagging.WithTopN(4))
//	tags, err := r.TagText(ctx, extractor, chunkText)
package tagging
