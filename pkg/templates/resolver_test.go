// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package templates_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/expand"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/files"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/orderedmap"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/resources"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/scope"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/templates"
	"github.com/HPInc/azure-pipeline-studio-sub001/pkg/yamlmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	fs       files.FS
	resolver *templates.Resolver
	expander *expand.Expander
	scope    *scope.Scope
}

func newFixture(t *testing.T, tpls map[string]string) fixture {
	fs := files.NewMemFS()
	for path, content := range tpls {
		require.NoError(t, fs.WriteFile(path, []byte(content)))
	}

	resolver := templates.NewResolver(fs, nil)
	sc := scope.New()
	sc.BaseDir = "/repo"
	sc.RepositoryBaseDir = "/repo"
	sc.TemplateStack = []string{"azure-pipelines.yml"}

	return fixture{fs, resolver, expand.NewExpander(nil, resolver), sc}
}

func (f fixture) expand(t *testing.T, text string) (string, error) {
	tree, err := yamlmeta.ParseValue(text)
	require.NoError(t, err)

	out, err := f.expander.Expand(tree, f.scope)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	require.NoError(t, enc.Encode(yamlmeta.NewDocumentNode(out)))
	require.NoError(t, enc.Close())
	return buf.String(), nil
}

func TestResolveTemplateWithDefaultsAndProvidedParameters(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/templates/greet.yml": `
parameters:
- name: who
  type: string
  default: world
- name: times
  type: number
  default: 1
steps:
- bash: echo hello ${{ parameters.who }} x${{ parameters.times }}
`,
	})

	out, err := f.expand(t, `
steps:
- template: templates/greet.yml
- template: templates/greet.yml
  parameters:
    who: team
    times: 2
`)
	require.NoError(t, err)

	expected := `steps:
  - task: Bash@3
    inputs:
      script: echo hello world x1
  - task: Bash@3
    inputs:
      script: echo hello team x2
`
	assert.Equal(t, expected, out)
	assert.Equal(t, []string{"/repo/templates/greet.yml"}, f.resolver.LoadedFiles())
}

func TestNestedTemplatesResolveRelativeToTheirOwnDirectory(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/jobs/build.yml": `
parameters:
  config: debug
jobs:
- job: build_${{ parameters.config }}
  steps:
  - template: ../steps/compile.yml
    parameters:
      config: ${{ parameters.config }}
`,
		"/repo/steps/compile.yml": `
parameters:
  config: ''
steps:
- script: make CONFIG=${{ parameters.config }}
`,
	})

	out, err := f.expand(t, `
jobs:
- template: jobs/build.yml
  parameters:
    config: release
`)
	require.NoError(t, err)

	expected := `jobs:
  - job: build_release
    steps:
      - task: CmdLine@2
        inputs:
          script: make CONFIG=release
`
	assert.Equal(t, expected, out)
}

func TestParameterValidationReportsEveryProblem(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/tpl.yml": `
parameters:
- name: a
- name: b
- name: env
  type: string
  values: [dev, prod]
  default: dev
- name: count
  type: number
  default: 1
steps: []
`,
	})

	_, err := f.expand(t, `
steps:
- template: tpl.yml
  parameters:
    env: qa
    count: many
    c: x
`)
	require.Error(t, err)

	expected := `Invalid parameters for template 'tpl.yml':
  missing required parameters: a, b
  type errors: count (expected number, got string)
  invalid values: env ('qa' is not one of [dev, prod])
  unknown parameters: c

Template call stack:
azure-pipelines.yml
  └── tpl.yml`
	assert.Equal(t, expected, err.Error())

	var verr templates.ParameterValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"a", "b"}, verr.MissingRequired)
	assert.Equal(t, []string{"c"}, verr.UnknownParameters)
}

func TestParameterValidationAcceptsRuntimeReferencesAndCoercibleValues(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/tpl.yml": `
parameters:
- name: enabled
  type: boolean
- name: count
  type: number
- name: env
  type: string
  values: [dev, prod]
- name: steps
  type: stepList
  default: []
- name: dependsOn
  type: object
  default: []
steps:
- script: echo ${{ parameters.enabled }} ${{ parameters.count }} ${{ parameters.env }}
`,
	})

	out, err := f.expand(t, `
steps:
- template: tpl.yml
  parameters:
    enabled: 'True'
    count: '3'
    env: $(targetEnv)
    dependsOn: build
`)
	require.NoError(t, err)
	assert.Contains(t, out, "script: echo True 3 $(targetEnv)")
}

func TestTemplateNotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.expand(t, "steps:\n- template: missing.yml\n")
	require.Error(t, err)
	assert.Equal(t, "Template file not found: missing.yml (looked for '/repo/missing.yml')\n\n"+
		"Template call stack:\nazure-pipelines.yml", err.Error())

	var notFound templates.TemplateNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestRepositoryQualifiedTemplates(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/src/tools/ci/build.yml": "steps:\n- script: echo tools\n",
		"/src/other/lint.yml":     "steps:\n- script: echo other\n",
		"/repo/local.yml":         "steps:\n- script: echo self\n",
	})

	tree, err := yamlmeta.ParseValue(`
repositories:
- repository: tools
  type: git
  name: org/tools
  location: /src/tools
- repository: nolocation
  type: git
  name: org/nolocation
`)
	require.NoError(t, err)
	f.scope.Resources, err = resources.Normalize(tree)
	require.NoError(t, err)
	f.scope.ResourceLocations["other"] = "/src/other"

	out, err := f.expand(t, `
steps:
- template: ci/build.yml@tools
- template: /lint.yml@other
- template: local.yml@self
`)
	require.NoError(t, err)
	assert.Contains(t, out, "script: echo tools")
	assert.Contains(t, out, "script: echo other")
	assert.Contains(t, out, "script: echo self")

	_, err = f.expand(t, "steps:\n- template: build.yml@unknown\n")
	var undefined templates.RepositoryUndefinedError
	require.True(t, errors.As(err, &undefined))
	assert.False(t, undefined.MissingLocation)
	assert.Contains(t, err.Error(), "resources.repositories")
	assert.Contains(t, err.Error(), "--resource-location unknown=<path>")

	_, err = f.expand(t, "steps:\n- template: build.yml@nolocation\n")
	require.True(t, errors.As(err, &undefined))
	assert.True(t, undefined.MissingLocation)
}

func TestAtSignInDirectoryIsNotAnAlias(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/templates/@scope/build.yml": "steps:\n- script: echo scoped\n",
	})

	out, err := f.expand(t, "steps:\n- template: templates/@scope/build.yml\n")
	require.NoError(t, err)
	assert.Contains(t, out, "script: echo scoped")
}

func TestSequenceRootedTemplate(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/t.yml": `
- script: one
- ${{ if eq(parameters.extra, true) }}:
  - bash: two
- checkout: none
`,
	})

	out, err := f.expand(t, `
steps:
- template: t.yml
  parameters:
    extra: true
- script: three
`)
	require.NoError(t, err)
	assert.Equal(t, `steps:
  - task: CmdLine@2
    inputs:
      script: one
  - task: Bash@3
    inputs:
      script: two
  - task: 6d15af64-176c-496d-b583-fd2ae21d4df4@1
    condition: false
    inputs:
      repository: none
  - task: CmdLine@2
    inputs:
      script: three
`, out)

	_, err = f.resolver.ResolveDocument(orderedmap.NewMapWithItems([]orderedmap.MapItem{{Key: "template", Value: "t.yml"}}), f.scope, f.expander)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected template to be a mapping")
}

func TestStepsOnlyTemplatesDoNotSeeCallerVariables(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/onlysteps.yml": `
steps:
- script: echo [${{ variables.outer }}]
`,
		"/repo/jobs.yml": `
jobs:
- job: j
  displayName: ${{ variables.outer }}
`,
	})

	out, err := f.expand(t, `
variables:
  outer: fromCaller
steps:
- template: onlysteps.yml
- script: echo ${{ variables.outer }} [${{ variables.inner }}]
jobs:
- template: jobs.yml
`)
	require.NoError(t, err)

	expected := `variables:
  - name: outer
    value: fromCaller
steps:
  - task: CmdLine@2
    inputs:
      script: echo []
  - task: CmdLine@2
    inputs:
      script: echo fromCaller []
jobs:
  - job: j
    displayName: fromCaller
`
	assert.Equal(t, expected, out)
}

func TestTemplateCalledTwiceGetsIndependentScopes(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/stage.yml": `
parameters:
  env: ''
stages:
- stage: deploy_${{ parameters.env }}
  variables:
    ${{ if eq(parameters.env, 'prod') }}:
      approval: required
  jobs:
  - job: run
    displayName: ${{ parameters.env }} [${{ variables.approval }}]
`,
	})

	out, err := f.expand(t, `
stages:
- template: stage.yml
  parameters:
    env: prod
- template: stage.yml
  parameters:
    env: dev
`)
	require.NoError(t, err)

	expected := `stages:
  - stage: deploy_prod
    variables:
      - name: approval
        value: required
    jobs:
      - job: run
        displayName: prod [required]
  - stage: deploy_dev
    variables: []
    jobs:
      - job: run
        displayName: dev []
`
	assert.Equal(t, expected, out)
}

func TestTemplateDepthIsLimited(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/loop.yml": "steps:\n- template: loop.yml\n",
	})
	f.resolver.MaxDepth = 4

	_, err := f.expand(t, "steps:\n- template: loop.yml\n")
	var depthErr templates.TemplateDepthError
	require.True(t, errors.As(err, &depthErr))
	assert.Len(t, depthErr.Stack, 5)
	assert.Contains(t, err.Error(), "nested more than 4 levels deep")
}

func TestTemplateParseErrorNamesTheFile(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/broken.yml": "steps:\n- script: [unclosed\n",
	})

	_, err := f.expand(t, "steps:\n- template: broken.yml\n")
	var parseErr templates.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), "broken.yml")
}

func TestVariablesTemplateBodyIsNormalized(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/repo/vars.yml": `
variables:
- shorthand: one
- name: full
  value: two
- group: shared
`,
	})

	out, err := f.expand(t, "variables:\n- template: vars.yml\n")
	require.NoError(t, err)

	expected := `variables:
  - name: shorthand
    value: one
  - name: full
    value: two
  - group: shared
`
	assert.Equal(t, expected, out)
}

func TestExtractParametersForms(t *testing.T) {
	for _, text := range []string{
		"- name: a\n  default: x\n- name: b\n",
		"a:\n  default: x\nb:\n  type: string\n",
	} {
		raw, err := yamlmeta.ParseValue(text)
		require.NoError(t, err)

		params, err := templates.ExtractParameters(raw)
		require.NoError(t, err)
		require.Len(t, params.List, 2)

		a, found := params.Lookup("a")
		require.True(t, found)
		assert.True(t, a.HasDefault)
		assert.Equal(t, "x", a.Default)

		b, _ := params.Lookup("b")
		assert.False(t, b.HasDefault)
	}

	raw, err := yamlmeta.ParseValue("a: 1\nb: null\n")
	require.NoError(t, err)
	params, err := templates.ExtractParameters(raw)
	require.NoError(t, err)

	defaults := params.Defaults()
	assert.Equal(t, []string{"a", "b"}, defaults.Keys())
	val, _ := defaults.Get("a")
	assert.Equal(t, 1, val)
}

func TestCallStackRendering(t *testing.T) {
	stack := templates.CallStack{"azure-pipelines.yml", "stages/deploy.yml", "steps/helm.yml@tools"}
	assert.Equal(t, "azure-pipelines.yml\n  └── stages/deploy.yml\n    └── steps/helm.yml@tools", stack.String())
}
