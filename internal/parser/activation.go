/*
 * Copyright 2024 The Go-Spring Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package parser

import (
	"fmt"
	"strings"

	"github.com/jander99/spring-profile-resolver/internal/model"
	"github.com/jander99/spring-profile-resolver/internal/profileexpr"
)

const (
	onProfileKey  = "spring.config.activate.on-profile"
	platformKey   = "spring.config.activate.on-cloud-platform"
	activeKey     = "spring.profiles.active"
	includeKey    = "spring.profiles.include"
	groupKeyRoot  = "spring.profiles.group"
)

// extractActivation strips the activation directives from content and
// builds the ConfigDocument, per spec.md §4.1. skip is true for a
// harmless empty trailing document that should be dropped silently; err
// is non-nil for a hard restriction violation (spec.md §7: "Restriction
// violation ... offending directive dropped, processing continues" is
// handled as a warning instead when it's recoverable — only the
// on-profile-with-profiles-active combination drops the whole document).
func extractActivation(content *model.Node, path string, index int, isTest bool) (*model.ConfigDocument, []model.Warning, bool, error) {
	if content == nil {
		content = model.NewMapping()
	}

	var warnings []model.Warning

	platform := ""
	if n, ok := model.GetPath(content, platformKey); ok {
		if s, ok := n.Scalar.(string); ok {
			platform = s
		}
		model.DeletePath(content, platformKey)
		model.DeleteEmptyAncestors(content, platformKey, "spring")
		warnings = append(warnings, model.Warning{
			Category: model.WarnCloudPlatform,
			Message:  fmt.Sprintf("%s[%d]: on-cloud-platform is unconditionally active unless a platform hint is supplied", path, index),
		})
	}

	onProfileNode, hasOnProfile := model.GetPath(content, onProfileKey)
	_, hasActive := model.GetPath(content, activeKey)
	_, hasInclude := model.GetPath(content, includeKey)

	if hasOnProfile && (hasActive || hasInclude) {
		return nil, warnings, false, fmt.Errorf(
			"both spring.config.activate.on-profile and spring.profiles.active/include present in the same document")
	}

	var activation *profileexpr.Expr
	if hasOnProfile {
		expr, err := parseActivationNode(onProfileNode)
		if err != nil {
			// spec.md §4.3: a syntactically invalid activation expression
			// drops only the containing document, with a warning — never a
			// fatal pipeline error.
			warnings = append(warnings, model.Warning{
				Category: model.WarnParse,
				Message:  fmt.Sprintf("%s[%d]: %s", path, index, err),
			})
			return nil, warnings, true, nil
		}
		activation = expr
		model.DeletePath(content, onProfileKey)
		model.DeleteEmptyAncestors(content, onProfileKey, "spring")
	}

	if activation != nil {
		if _, ok := model.GetPath(content, groupKeyRoot); ok {
			model.DeletePath(content, groupKeyRoot)
			model.DeleteEmptyAncestors(content, groupKeyRoot, "spring")
			warnings = append(warnings, model.Warning{
				Category: model.WarnRestriction,
				Message:  fmt.Sprintf("%s[%d]: spring.profiles.group is not allowed in a profile-specific document; directive dropped", path, index),
			})
		}
	}

	if content.IsEmptyMapping() && activation == nil && platform == "" && index > 0 {
		// A document with no content, no activation, and no platform hint
		// that isn't the file's first document is the trailing-separator
		// case spec.md §4.1 says to skip.
		return nil, warnings, true, nil
	}

	doc := &model.ConfigDocument{
		Content:         content,
		Activation:      activation,
		OnCloudPlatform: platform,
		SourceFile:      path,
		DocumentIndex:   index,
		IsTest:          isTest,
	}
	return doc, warnings, false, nil
}

// parseActivationNode compiles an on-profile value, which may be a single
// string (possibly comma-separated, the legacy OR form) or a sequence of
// profile name strings.
func parseActivationNode(n *model.Node) (*profileexpr.Expr, error) {
	switch n.Kind {
	case model.KindSequence:
		var names []string
		for _, item := range n.Sequence {
			if s, ok := item.Scalar.(string); ok {
				names = append(names, s)
			}
		}
		return profileexpr.ParseLegacyList(names)
	case model.KindScalar:
		s, ok := n.Scalar.(string)
		if !ok {
			return nil, fmt.Errorf("on-profile value must be a string or list of strings")
		}
		if strings.ContainsAny(s, "!&|()") {
			return profileexpr.Parse(s)
		}
		return profileexpr.ParseLegacyList(strings.Split(s, ","))
	default:
		return nil, fmt.Errorf("on-profile value must be a string or list of strings")
	}
}
