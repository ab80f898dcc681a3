package loader

import (
	"fmt"
	"math"
	"os"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"sigs.k8s.io/yaml"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

const (
	// MIPSAnnotation sets a node's per-core rate.
	MIPSAnnotation = "sjfsim.io/mips"
	// DisciplineAnnotation overrides the simulation default for one node.
	DisciplineAnnotation = "sjfsim.io/discipline"

	DefaultMIPS = 1000.0
)

// LoadMachinesFromNodeList turns a NodeList (or single Node) manifest, as
// printed by `kubectl get nodes -o yaml`, into one machine per node owned by
// owner. Whole cores come from status.capacity.cpu.
func LoadMachinesFromNodeList(path string, owner int) ([]core.MachineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading node manifest: %w", err)
	}
	nodes, err := decodeNodes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing node manifest %s: %w", path, err)
	}
	return MachinesFromNodes(nodes, owner)
}

func decodeNodes(data []byte) ([]corev1.Node, error) {
	var list corev1.NodeList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	if list.Kind != "Node" {
		return list.Items, nil
	}
	var node corev1.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return []corev1.Node{node}, nil
}

// MachinesFromNodes maps nodes to machine specs in the given order.
func MachinesFromNodes(nodes []corev1.Node, owner int) ([]core.MachineSpec, error) {
	var errs field.ErrorList
	root := field.NewPath("items")
	specs := make([]core.MachineSpec, 0, len(nodes))
	for i, n := range nodes {
		p := root.Index(i)
		spec := core.MachineSpec{OwnerID: owner, Capacity: DefaultMIPS}

		cpu, ok := n.Status.Capacity[corev1.ResourceCPU]
		if !ok {
			errs = append(errs, field.Required(p.Child("status", "capacity", "cpu"), n.Name))
		} else {
			spec.Cores = int(cpu.MilliValue() / 1000)
			if spec.Cores < 1 {
				errs = append(errs, field.Invalid(p.Child("status", "capacity", "cpu"), cpu.String(),
					"node must have at least one whole core"))
			}
		}

		if v, ok := n.Annotations[MIPSAnnotation]; ok {
			mips, err := strconv.ParseFloat(v, 64)
			if err != nil || !(mips > 0) || math.IsInf(mips, 0) {
				errs = append(errs, field.Invalid(p.Child("metadata", "annotations").Key(MIPSAnnotation), v,
					"must be a positive finite number"))
			}
			spec.Capacity = mips
		}
		if v, ok := n.Annotations[DisciplineAnnotation]; ok {
			d, err := core.ParseDiscipline(v)
			if err != nil {
				errs = append(errs, field.Invalid(p.Child("metadata", "annotations").Key(DisciplineAnnotation), v,
					"unknown discipline"))
			}
			spec.Discipline = d
		}
		specs = append(specs, spec)
	}
	if err := core.InvalidConfiguration(errs); err != nil {
		return nil, err
	}
	return specs, nil
}
