/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package loader

// successConfigText sets every field explicitly.
const successConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
outputCapacity: 10
passDelay: 10ms
runMode: indefinite
channels:
- id: 1
  weight: 1
- id: 2
  weight: 2
- id: 7
  weight: 4
`

// minimalConfigText leaves everything to the defaults.
const minimalConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
`

// zeroDelayConfigText disables the pass delay explicitly.
const zeroDelayConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
passDelay: 0s
`

// unknownFieldConfigText has a field the API does not define.
const unknownFieldConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
outputSize: 10
`

// malformedConfigText is not valid YAML.
const malformedConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
channels: [
`

// duplicateChannelConfigText lists channel 3 twice.
const duplicateChannelConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
channels:
- id: 3
  weight: 3
- id: 3
  weight: 1
`

// invalidWeightConfigText has a non-positive weight.
const invalidWeightConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
channels:
- id: 1
  weight: 0
`

// wrongKindConfigText uses a kind the loader does not accept.
const wrongKindConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: EndpointPickerConfig
`

// invalidFieldsConfigText has several invalid fields at once.
const invalidFieldsConfigText = `
apiVersion: config.techpractice.io/v1alpha1
kind: OrderingConfig
outputCapacity: -1
passDelay: -1s
runMode: sometimes
`
