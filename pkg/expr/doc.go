// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package expr evaluates the payload of a ${{ ... }} directive.

The grammar is C-like: literals, identifiers, member and index access,
array and object literals, unary, arithmetic, comparison, logical and
nullish operators, the ternary operator and function calls. Evaluation
never fails; anything that cannot be resolved yields Undefined or the
literal source text.

Booleans computed by evaluation are returned as RenderedBool so the
output stage can print them as True/False.
*/
package expr
