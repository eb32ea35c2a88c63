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


// Package ai defines the AI service boundaries used by the matching pipeline:
// text embedding and low-confidence disambiguation.
//
// The package contains only interfaces, configuration, and error types.
// Concrete implementations live in subpackages:
//   - ai/openai: OpenAI-compatible services (Ollama, LocalAI, vLLM, OpenAI)
//   - ai/mock: deterministic test doubles
//
// Components depend on the interfaces here, never on a concrete provider,
// so fixed/fake models can be substituted in tests.
package ai
