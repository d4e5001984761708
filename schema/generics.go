// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

// With is a map of parameters handed to a builtin action, string values may contain ${{ }} expressions
type With = map[string]any

// Env is a map of environment variable names to values
type Env = map[string]any
