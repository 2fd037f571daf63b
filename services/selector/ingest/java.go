// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

// JavaInfo is the structural summary of one Java source file.
type JavaInfo struct {
	Package             string
	ClassName           string
	FullyQualifiedClass string
	Methods             []datatypes.TouchedMethod
}

// ParseJavaSource extracts package, class and method spans from Java
// source using tree-sitter.
//
// Description:
//
//	Walks the syntax tree for class, method and constructor
//	declarations. Nested classes contribute "Outer$Inner" style class
//	names and every method records its 1-based start and end lines, so
//	hunk overlap can be computed directly. Constructors are recorded
//	under the JVM name <init>.
//
// Inputs:
//
//	ctx - Parse context; cancels a runaway parse.
//	src - Java source text.
//	className - Class name from the file path, used when the source
//	  declares no top-level class name (anonymous-heavy files).
//
// Outputs:
//
//	*JavaInfo - Structural summary.
//	error - ErrJavaParseFailed when tree-sitter rejects the source.
func ParseJavaSource(ctx context.Context, src []byte, className string) (*JavaInfo, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJavaParseFailed, err)
	}
	defer tree.Close()

	info := &JavaInfo{ClassName: className}
	root := tree.RootNode()

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				n := child.NamedChild(j)
				if n.Type() == "scoped_identifier" || n.Type() == "identifier" {
					info.Package = n.Content(src)
				}
			}
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if name := child.ChildByFieldName("name"); name != nil && info.ClassName == "" {
				info.ClassName = name.Content(src)
			}
		}
	}

	if info.Package != "" {
		info.FullyQualifiedClass = info.Package + "." + info.ClassName
	} else {
		info.FullyQualifiedClass = info.ClassName
	}

	collectJavaMethods(root, src, info.Package, nil, &info.Methods)
	return info, nil
}

// collectJavaMethods walks the tree accumulating method and constructor
// declarations. classStack tracks enclosing type names for nested
// classes.
func collectJavaMethods(node *sitter.Node, src []byte, pkg string, classStack []string, out *[]datatypes.TouchedMethod) {
	switch node.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			classStack = append(classStack, name.Content(src))
		}
	case "method_declaration", "constructor_declaration":
		name := node.ChildByFieldName("name")
		if name == nil || len(classStack) == 0 {
			break
		}
		methodName := name.Content(src)
		if node.Type() == "constructor_declaration" {
			methodName = "<init>"
		}

		fqc := strings.Join(classStack, "$")
		if pkg != "" {
			fqc = pkg + "." + fqc
		}
		*out = append(*out, datatypes.TouchedMethod{
			Name:      name.Content(src),
			Signature: signatureOf(node, src),
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
			FQN:       fqc + "#" + methodName,
		})
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectJavaMethods(node.NamedChild(i), src, pkg, classStack, out)
	}
}

// signatureOf returns the declaration header up to the body.
func signatureOf(node *sitter.Node, src []byte) string {
	content := node.Content(src)
	if idx := strings.Index(content, "{"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

// AnnotateTouchedMethods fills the touched-method list of a changed
// file by intersecting its hunks with the method spans of its source.
//
// A method counts as touched when any hunk range overlaps its
// [StartLine, EndLine] span. The package, class and FQC fields are
// refreshed from the parsed source, which beats the path-derived guess.
func AnnotateTouchedMethods(ctx context.Context, cf *datatypes.ChangedFile, src []byte) error {
	info, err := ParseJavaSource(ctx, src, "")
	if err != nil {
		return err
	}
	if info.ClassName == "" {
		info.ClassName = strings.TrimSuffix(cf.FileName, ".java")
		if info.Package != "" {
			info.FullyQualifiedClass = info.Package + "." + info.ClassName
		} else {
			info.FullyQualifiedClass = info.ClassName
		}
	}

	cf.Package = info.Package
	cf.ClassName = info.ClassName
	cf.FullyQualifiedClass = info.FullyQualifiedClass

	cf.TouchedMethods = nil
	for _, m := range info.Methods {
		if methodTouched(m, cf.Hunks) {
			cf.TouchedMethods = append(cf.TouchedMethods, m)
		}
	}
	return nil
}

func methodTouched(m datatypes.TouchedMethod, hunks []datatypes.Hunk) bool {
	for _, h := range hunks {
		if h.End < m.StartLine || h.Start > m.EndLine {
			continue
		}
		return true
	}
	return false
}
