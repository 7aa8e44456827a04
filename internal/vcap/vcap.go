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

// Package vcap flattens Cloud Foundry's VCAP_SERVICES and VCAP_APPLICATION
// environment variables into the vcap.services.<name>.* and
// vcap.application.* namespaces a placeholder can look up (spec.md §4.6,
// §6). Nothing in the retrieved reference material parses VCAP; the shape
// here follows spec.md's own description directly, using only
// encoding/json (no library in the pack does CF service-binding parsing).
package vcap

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jander99/spring-profile-resolver/internal/model"
)

// Source reads the two CF environment variables a process is given.
type Source struct {
	VCAPServices    string
	VCAPApplication string
}

// Flatten parses src into the ordered vcap.services.<name>.* and
// vcap.application.* namespace. A service is keyed by its instance name,
// or by its VCAP_SERVICES label key when the instance has no name; only
// the first instance listed under each label is exposed. It returns
// warnings for malformed JSON
// rather than failing the whole resolution (spec.md §7: a missing or
// malformed VCAP_SERVICES/VCAP_APPLICATION value degrades to "the
// namespace is simply absent", not a hard error).
func Flatten(src Source) (*model.OrderedMap, []model.Warning) {
	out := model.NewOrderedMap()
	var warnings []model.Warning

	if src.VCAPServices != "" {
		var services map[string][]service
		if err := json.Unmarshal([]byte(src.VCAPServices), &services); err != nil {
			warnings = append(warnings, model.Warning{
				Category: model.WarnCloudPlatform,
				Message:  fmt.Sprintf("VCAP_SERVICES: %s", err),
			})
		} else {
			servicesMap := model.NewOrderedMap()
			names := make([]string, 0, len(services))
			for name := range services {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				instances := services[name]
				if len(instances) == 0 {
					continue
				}
				key := instances[0].Name
				if key == "" {
					key = name
				}
				servicesMap.Set(key, serviceNode(instances[0]))
			}
			out.Set("services", &model.Node{Kind: model.KindMapping, Mapping: servicesMap})
		}
	}

	if src.VCAPApplication != "" {
		var app map[string]any
		if err := json.Unmarshal([]byte(src.VCAPApplication), &app); err != nil {
			warnings = append(warnings, model.Warning{
				Category: model.WarnCloudPlatform,
				Message:  fmt.Sprintf("VCAP_APPLICATION: %s", err),
			})
		} else {
			out.Set("application", jsonToNode(app))
		}
	}

	return out, warnings
}

// service is the subset of a VCAP_SERVICES entry spring.config.import-style
// lookups care about: its credentials and a handful of top-level fields.
type service struct {
	Name        string         `json:"name"`
	Label       string         `json:"label"`
	Plan        string         `json:"plan"`
	Tags        []string       `json:"tags"`
	Credentials map[string]any `json:"credentials"`
}

func serviceNode(s service) *model.Node {
	m := model.NewOrderedMap()
	if s.Name != "" {
		m.Set("name", model.NewScalar(s.Name))
	}
	if s.Label != "" {
		m.Set("label", model.NewScalar(s.Label))
	}
	if s.Plan != "" {
		m.Set("plan", model.NewScalar(s.Plan))
	}
	if len(s.Tags) > 0 {
		seq := make([]*model.Node, len(s.Tags))
		for i, t := range s.Tags {
			seq[i] = model.NewScalar(t)
		}
		m.Set("tags", model.NewSequence(seq))
	}
	if len(s.Credentials) > 0 {
		m.Set("credentials", jsonToNode(s.Credentials))
	}
	return &model.Node{Kind: model.KindMapping, Mapping: m}
}

// jsonToNode converts a decoded JSON value (map[string]any, []any, or a
// scalar) into our Node tree, preserving map keys in sorted order since
// encoding/json gives no ordering guarantee of its own.
func jsonToNode(v any) *model.Node {
	switch val := v.(type) {
	case map[string]any:
		m := model.NewOrderedMap()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, jsonToNode(val[k]))
		}
		return &model.Node{Kind: model.KindMapping, Mapping: m}
	case []any:
		seq := make([]*model.Node, len(val))
		for i, item := range val {
			seq[i] = jsonToNode(item)
		}
		return model.NewSequence(seq)
	default:
		return model.NewScalar(val)
	}
}
